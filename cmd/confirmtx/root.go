package main

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/config"
	confirmgrpc "github.com/fardream/confirm-solana-transaction/grpc"
	"github.com/fardream/confirm-solana-transaction/metrics"
	"github.com/fardream/confirm-solana-transaction/poller"
	"github.com/fardream/confirm-solana-transaction/solanaconn"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	v          *viper.Viper

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "confirmtx",
		Short:         "Send Solana transactions and wait for confirmation.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	flags.String("endpoint", "", "Solana JSON-RPC URL or relay address")
	flags.String("transport", "", "solana or grpc")
	flags.String("commitment", "", "processed, confirmed or finalized")
	flags.Duration("timeout", 0, "confirmation timeout (send defaults to 60s, confirm to none)")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "json, console or logfmt")

	cmd.AddCommand(confirmCmd(a), sendCmd(a), serveCmd(a))
	return cmd
}

// flagKeys maps flags onto config keys. Only flags the user set
// override file and environment values. A command may redirect a flag
// through its Annotations, keyed by flag name.
var flagKeys = map[string]string{
	"endpoint":       "endpoint",
	"transport":      "transport",
	"commitment":     "commitment",
	"timeout":        "timeout",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"skip-preflight": "skip_preflight",
	"max-retries":    "max_retries",
	"listen":         "listen",
	"metrics-listen": "metrics_listen",
	"simulate":       "simulate",
}

func (a *app) load(cmd *cobra.Command) error {
	v, err := config.NewViper(a.configPath)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if k, ok := cmd.Annotations[name]; ok {
			key = k
		}
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrapf(err, "bind --%s", name)
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.v, a.cfg, a.log = v, cfg, log.Named("confirmtx")
	return nil
}

// connect dials the configured endpoint.
func (a *app) connect() (confirm.Connection, func(), error) {
	switch a.cfg.Transport {
	case config.TransportGRPC:
		c, err := confirmgrpc.Dial(a.cfg.Endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		c := solanaconn.New(a.cfg.Endpoint)
		return c, func() { _ = c.Close() }, nil
	}
}

// pollerConfig returns loop settings plus the registry its metrics land in.
func (a *app) pollerConfig() (poller.Config, *prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return poller.Config{}, nil, err
	}
	return a.cfg.PollerConfig(a.log, rec), reg, nil
}

// writeMetrics stores reg in node_exporter textfile format, if path is set.
func writeMetrics(path string, reg *prometheus.Registry) error {
	if path == "" {
		return nil
	}
	return errors.Wrap(prometheus.WriteToTextfile(path, reg), "write metrics")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
