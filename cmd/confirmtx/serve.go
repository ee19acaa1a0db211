package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	confirm "github.com/fardream/confirm-solana-transaction"
	confirmgrpc "github.com/fardream/confirm-solana-transaction/grpc"
	"github.com/fardream/confirm-solana-transaction/local"
	"github.com/fardream/confirm-solana-transaction/metrics"
	"github.com/fardream/confirm-solana-transaction/solanaconn"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Relay a ledger connection over gRPC.",
		Long: `Relay a Solana JSON-RPC endpoint, or with --simulate an in-process
ledger, over gRPC. Metrics and health checks are served over HTTP.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	flags := cmd.Flags()
	flags.String("listen", "", "gRPC listen address")
	flags.String("metrics-listen", "", "HTTP listen address for /metrics and /healthz; empty disables")
	flags.Bool("simulate", false, "serve the in-process simulated ledger")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	backend, err := a.backend(ctx)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", a.cfg.Listen)
	if err != nil {
		return errors.Wrapf(err, "listen %s", a.cfg.Listen)
	}
	gs := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	confirmgrpc.NewGRPCServer(backend, a.log).Register(gs)

	errc := make(chan error, 2)
	go func() {
		a.log.Info("relay listening", zap.String("addr", lis.Addr().String()), zap.Bool("simulate", a.cfg.Simulate))
		errc <- gs.Serve(lis)
	}()

	var hs *http.Server
	if a.cfg.MetricsListen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hs = &http.Server{
			Addr:              a.cfg.MetricsListen,
			Handler:           metrics.NewHandler(reg, backend, a.log),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.log.Info("metrics listening", zap.String("addr", hs.Addr))
			if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.log.Info("shutting down")
	case err = <-errc:
		a.log.Error("server failed", zap.Error(err))
	}

	if hs != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}
	gs.GracefulStop()
	return err
}

// backend returns the connection the relay serves. The simulated ledger
// runs until ctx ends.
func (a *app) backend(ctx context.Context) (confirm.Connection, error) {
	if !a.cfg.Simulate {
		if a.cfg.Endpoint == "" {
			return nil, errors.New("endpoint is required unless --simulate is set")
		}
		return solanaconn.New(a.cfg.Endpoint), nil
	}
	ledger := local.NewLedger(local.Config{Logger: a.log})
	go func() {
		if err := ledger.Run(ctx, a.cfg.BlockTime); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("simulated ledger stopped", zap.Error(err))
		}
	}()
	return ledger, nil
}
