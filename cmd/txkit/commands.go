package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-txkit/internal/blockchain/solana/programs/computebudget"
	"github.com/rovshanmuradov/solana-txkit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-txkit/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-txkit/internal/config"
	"github.com/rovshanmuradov/solana-txkit/internal/instruction"
	"github.com/rovshanmuradov/solana-txkit/internal/report"
	"github.com/rovshanmuradov/solana-txkit/internal/utils/logger"
	"github.com/rovshanmuradov/solana-txkit/internal/wallet"
)

var errTransactionFailed = errors.New("transaction failed")

func keygenCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate a keypair and save it as a Solana CLI keyfile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Usage:    "Path of the new keyfile; an existing file is never overwritten",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			path := config.ExpandPath(c.String("out"))

			w, err := wallet.Generate()
			if err != nil {
				return err
			}
			if err := w.SaveToFile(path); err != nil {
				return err
			}

			rt.log.WithOperation("keygen").Info("Keypair saved",
				zap.String("path", path),
				zap.String("pubkey", w.String()),
			)
			rt.reporter.NewSection()
			rt.reporter.LogNewKeypair(w.PublicKey)
			return nil
		},
	}
}

func balanceCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "balance",
		Usage:     "Show SOL balances; defaults to the configured keypair",
		ArgsUsage: "[NAME=]PUBKEY ...",
		Action: func(c *cli.Context) error {
			accounts, err := parseAccounts(c.Args().Slice())
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				payer, err := wallet.LoadFromFile(config.ExpandPath(rt.cfg.KeypairPath))
				if err != nil {
					return err
				}
				accounts = []report.NamedAccount{{Name: "payer", Pubkey: payer.PublicKey}}
			}

			defer rt.log.TrackPerformance("balance")()
			_, err = rt.reporter.LogBalances(c.Context, accounts)
			return err
		},
	}
}

// parseAccounts accepts NAME=PUBKEY or a bare PUBKEY, which is labelled by position.
func parseAccounts(args []string) ([]report.NamedAccount, error) {
	accounts := make([]report.NamedAccount, 0, len(args))
	for i, arg := range args {
		name, key, found := strings.Cut(arg, "=")
		if !found {
			name, key = fmt.Sprintf("account %d", i+1), arg
		}
		pubkey, err := solana.PublicKeyFromBase58(key)
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey %q: %w", key, err)
		}
		accounts = append(accounts, report.NamedAccount{Name: name, Pubkey: pubkey})
	}
	return accounts, nil
}

func accountCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "account",
		Usage:     "Show an account's lamports, owner and data size",
		ArgsUsage: "PUBKEY",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression applied to the JSON view, e.g. '.lamports'",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("account pubkey is required")
			}
			pubkey, err := solana.PublicKeyFromBase58(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid pubkey: %w", err)
			}

			expr := c.String("jq")
			if !c.Bool("json") && expr == "" {
				_, err := rt.reporter.LogAccountInfo(c.Context, pubkey)
				return err
			}

			account, err := rt.client.GetAccountInfo(c.Context, pubkey)
			if err != nil {
				return fmt.Errorf("failed to get account %s: %w", pubkey, err)
			}
			view := report.NewAccountView(pubkey, account)
			if expr != "" {
				return runJQ(c.App.Writer, expr, view)
			}
			return printJSON(c.App.Writer, view)
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// runJQ evaluates expr against v's JSON form and prints every result.
func runJQ(w io.Writer, expr string, v interface{}) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("failed to parse jq filter %q: %w", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq filter %q: %w", expr, err)
	}

	// gojq works on plain maps and slices, not structs
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return err
	}

	iter := code.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, isErr := result.(error); isErr {
			return fmt.Errorf("jq: %w", err)
		}
		if err := printJSON(w, result); err != nil {
			return err
		}
	}
}

func statusCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Report whether a transaction is confirmed, failed or still pending",
		ArgsUsage: "SIGNATURE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "wait",
				Aliases: []string{"w"},
				Usage:   "Poll until the transaction is confirmed or failed",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long --wait polls before giving up (default: await_timeout)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("transaction signature is required")
			}
			sig, err := solana.SignatureFromBase58(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid signature: %w", err)
			}

			if c.Bool("wait") {
				return rt.await(c.Context, sig, rt.timeout(c))
			}
			_, err = rt.reporter.LogTransaction(c.Context, sig)
			return err
		},
	}
}

func (rt *runtime) timeout(c *cli.Context) time.Duration {
	if c.IsSet("timeout") {
		return c.Duration("timeout")
	}
	return rt.cfg.AwaitTimeout
}

// await polls until the signature settles and reports the final outcome.
// A failed or still pending transaction is returned as an error.
func (rt *runtime) await(ctx context.Context, sig solana.Signature, timeout time.Duration) error {
	log := rt.log.WithTransaction(sig.String())
	log.Debug("Awaiting confirmation", zap.Duration("timeout", timeout))

	outcome, err := transaction.AwaitSettled(ctx, rt.client, sig, transaction.AwaitOptions{MaxElapsedTime: timeout})
	if err != nil && !errors.Is(err, transaction.ErrStillPending) {
		return err
	}
	rt.reporter.LogOutcome(outcome, sig)

	switch {
	case err != nil:
		return err
	case outcome.Kind == transaction.OutcomeFailed:
		log.Warn("Transaction failed", zap.String("reason", report.FormatReason(outcome.Reason)))
		return errTransactionFailed
	default:
		log.Info("Transaction confirmed",
			zap.String("level", string(outcome.Level)),
			zap.Uint64("slot", outcome.Slot),
		)
		return nil
	}
}

func buildCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build and sign a v0 transaction from an instructions file, print it as base64",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "instructions",
				Aliases:  []string{"i"},
				Usage:    "JSON file with the instructions, in execution order",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "payer",
				Usage: "Keyfile of the fee payer (default: keypair_path); the payer always signs",
			},
			&cli.StringSliceFlag{
				Name:  "signer",
				Usage: "Keyfile of an additional signer, repeatable; signs in the given order",
			},
			&cli.UintFlag{
				Name:  "compute-unit-limit",
				Usage: "Prepend a SetComputeUnitLimit instruction",
			},
			&cli.Uint64Flag{
				Name:  "compute-unit-price",
				Usage: "Prepend a SetComputeUnitPrice instruction, in micro-lamports",
			},
			&cli.BoolFlag{
				Name:  "send",
				Usage: "Submit the signed transaction and report its status",
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "With --send, poll until the transaction settles",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long --wait polls before giving up (default: await_timeout)",
			},
		},
		Action: func(c *cli.Context) error {
			log := rt.log.WithOperation("build")

			payerPath := rt.cfg.KeypairPath
			if c.IsSet("payer") {
				payerPath = c.String("payer")
			}
			payer, err := wallet.LoadFromFile(config.ExpandPath(payerPath))
			if err != nil {
				return err
			}

			signers := []*wallet.Wallet{payer}
			for _, path := range c.StringSlice("signer") {
				w, err := wallet.LoadFromFile(config.ExpandPath(path))
				if err != nil {
					return err
				}
				if w.PublicKey.Equals(payer.PublicKey) {
					continue
				}
				signers = append(signers, w)
			}

			ixs, err := instruction.LoadFile(c.String("instructions"))
			if err != nil {
				return err
			}
			budget := computebudget.Config{
				Units:         uint32(c.Uint("compute-unit-limit")),
				MicroLamports: c.Uint64("compute-unit-price"),
			}
			if ixs, err = budget.Prepend(ixs); err != nil {
				return err
			}

			tx, err := transaction.Build(c.Context, rt.client, payer.PublicKey, wallet.Keys(signers...), ixs)
			if err != nil {
				return err
			}
			encoded, err := transaction.Encode(tx)
			if err != nil {
				return err
			}
			log.Debug("Transaction built",
				zap.Int("instructions", len(ixs)),
				zap.Int("signatures", len(transaction.SignedBy(tx))),
				zap.String("blockhash", tx.Message.RecentBlockhash.String()),
			)
			fmt.Fprintln(c.App.Writer, encoded)

			if !c.Bool("send") {
				return nil
			}

			sig, err := rt.client.SendTransaction(c.Context, tx)
			if err != nil {
				if failure, ok := solbc.AnalyzeSendError(err); ok {
					printSimulationFailure(c.App.ErrWriter, failure)
				}
				return err
			}
			log.Info("Transaction sent", zap.String("signature", logger.ShortenSignature(sig.String())))

			if c.Bool("wait") {
				return rt.await(c.Context, sig, rt.timeout(c))
			}
			_, err = rt.reporter.LogTransaction(c.Context, sig)
			return err
		},
	}
}

func printSimulationFailure(w io.Writer, failure *solbc.SimulationFailure) {
	fmt.Fprintln(w, "Simulation failed: "+report.FormatReason(failure.Err))
	if failure.Anchor != nil {
		fmt.Fprintf(w, "   Anchor error %d %s: %s\n", failure.Anchor.Code, failure.Anchor.Name, failure.Anchor.Msg)
	}
	for _, line := range failure.Logs {
		fmt.Fprintln(w, "   "+line)
	}
}
