// internal/report/reporter.go
package report

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-txkit/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-txkit/internal/utils/metrics"
)

// Ledger is the part of the ledger client the reporter reads from.
type Ledger interface {
	transaction.StatusSource
	GetBalance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
	GetAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.Account, error)
}

// NamedAccount labels a public key in balance output.
type NamedAccount struct {
	Name   string
	Pubkey solana.PublicKey
}

// Reporter fetches values from the ledger and writes their formatted lines to a sink.
// Query errors are returned to the caller; nothing is written for a failed query.
type Reporter struct {
	client  Ledger
	sink    Sink
	metrics *metrics.Collector
}

func NewReporter(client Ledger, sink Sink, m *metrics.Collector) *Reporter {
	return &Reporter{client: client, sink: sink, metrics: m}
}

func (r *Reporter) NewSection() {
	Emit(r.sink, Section())
}

func (r *Reporter) LogNewKeypair(pubkey solana.PublicKey) {
	Emit(r.sink, NewKeypair(pubkey))
}

func (r *Reporter) LogNewMint(pubkey solana.PublicKey, decimals uint8) {
	Emit(r.sink, NewMint(pubkey, decimals))
}

// LogTransaction classifies the signature's current status and reports it.
func (r *Reporter) LogTransaction(ctx context.Context, signature solana.Signature) (transaction.Outcome, error) {
	outcome, err := transaction.CheckStatus(ctx, r.client, signature)
	if err != nil {
		return transaction.Outcome{}, err
	}
	r.metrics.RecordOutcome(outcome.Kind.String())
	Emit(r.sink, Transaction(outcome, signature))
	return outcome, nil
}

// LogOutcome reports an outcome obtained elsewhere, e.g. from AwaitSettled.
func (r *Reporter) LogOutcome(outcome transaction.Outcome, signature solana.Signature) {
	r.metrics.RecordOutcome(outcome.Kind.String())
	Emit(r.sink, Transaction(outcome, signature))
}

func (r *Reporter) LogBalance(ctx context.Context, name string, pubkey solana.PublicKey) (uint64, error) {
	lamports, err := r.client.GetBalance(ctx, pubkey)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of %s: %w", pubkey, err)
	}
	Emit(r.sink, Balance(name, pubkey, lamports))
	return lamports, nil
}

// LogBalances queries all balances in parallel and prints them in input order.
// Nothing is printed if any query fails.
func (r *Reporter) LogBalances(ctx context.Context, accounts []NamedAccount) ([]uint64, error) {
	balances := make([]uint64, len(accounts))

	g, gCtx := errgroup.WithContext(ctx)
	for i, acc := range accounts {
		g.Go(func() error {
			lamports, err := r.client.GetBalance(gCtx, acc.Pubkey)
			if err != nil {
				return fmt.Errorf("failed to get balance of %s: %w", acc.Pubkey, err)
			}
			balances[i] = lamports
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, acc := range accounts {
		Emit(r.sink, Balance(acc.Name, acc.Pubkey, balances[i]))
	}
	return balances, nil
}

func (r *Reporter) LogAccountInfo(ctx context.Context, pubkey solana.PublicKey) (*rpc.Account, error) {
	account, err := r.client.GetAccountInfo(ctx, pubkey)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", pubkey, err)
	}
	Emit(r.sink, AccountInfo(account))
	return account, nil
}
