package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-txkit/internal/blockchain"
	"github.com/rovshanmuradov/solana-txkit/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-txkit/internal/config"
	"github.com/rovshanmuradov/solana-txkit/internal/report"
	"github.com/rovshanmuradov/solana-txkit/internal/utils/logger"
	"github.com/rovshanmuradov/solana-txkit/internal/utils/metrics"
)

// Dialer opens the ledger client used by every command.
type Dialer func(cfg *config.Config, log *zap.Logger, m *metrics.Collector) blockchain.Client

func dialRPC(cfg *config.Config, log *zap.Logger, m *metrics.Collector) blockchain.Client {
	return solbc.NewClient(cfg.RPCURL, solbc.Options{
		Commitment:    cfg.CommitmentType(),
		SearchHistory: cfg.SearchHistory,
		SkipPreflight: cfg.SkipPreflight,
	}, log, m)
}

// runtime is filled in by the app's Before hook and shared by all commands.
type runtime struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Collector
	client   blockchain.Client
	reporter *report.Reporter
}

func newApp(stdout, stderr io.Writer, dial Dialer) *cli.App {
	rt := &runtime{}

	return &cli.App{
		Name:      "txkit",
		Usage:     "Build, sign and inspect Solana transactions",
		Version:   fmt.Sprintf("%s (commit: %s)", version, commit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a JSON or YAML config file",
			},
			&cli.StringFlag{
				Name:  "rpc-url",
				Usage: "Solana JSON-RPC endpoint, overrides rpc_url",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging on the console",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics in textfile format on exit",
			},
		},
		Before: func(c *cli.Context) error {
			return rt.setup(c, stdout, stderr, dial)
		},
		After: func(c *cli.Context) error {
			return rt.teardown()
		},
		Commands: []*cli.Command{
			keygenCommand(rt),
			balanceCommand(rt),
			accountCommand(rt),
			statusCommand(rt),
			buildCommand(rt),
		},
	}
}

func (rt *runtime) setup(c *cli.Context, stdout, stderr io.Writer, dial Dialer) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("metrics-file") {
		cfg.MetricsFile = c.String("metrics-file")
	}
	if c.Bool("debug") {
		cfg.DebugLogging = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	logCfg.Console = stderr
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	rt.cfg = cfg
	rt.log = log
	rt.metrics = metrics.NewCollector()
	rt.client = dial(cfg, log.Logger, rt.metrics)
	sink := report.Tee(report.NewWriterSink(stdout, stderr), report.NewLogSink(log.File()))
	rt.reporter = report.NewReporter(rt.client, sink, rt.metrics)

	log.Debug("Configuration loaded",
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("commitment", cfg.Commitment),
	)
	return nil
}

func (rt *runtime) teardown() error {
	if rt.log == nil {
		return nil
	}
	var err error
	if rt.cfg.MetricsFile != "" {
		if err = rt.metrics.WriteTextfile(rt.cfg.MetricsFile); err != nil {
			rt.log.Error("Failed to write metrics", zap.String("path", rt.cfg.MetricsFile), zap.Error(err))
		}
	}
	_ = rt.log.Sync()
	return err
}
