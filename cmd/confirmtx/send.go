package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/client"
	"github.com/fardream/confirm-solana-transaction/solanaconn"
)

func sendCmd(a *app) *cobra.Command {
	var (
		txFile      string
		keypairs    []string
		metricsPath string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Sign a transaction with a fresh blockhash, submit it and wait for confirmation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if txFile == "" || len(keypairs) == 0 {
				return errors.New("--tx-file and at least one --keypair are required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.send(ctx, cmd, txFile, keypairs, metricsPath)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&txFile, "tx-file", "", "base64 wire transaction; its blockhash is replaced")
	flags.StringSliceVar(&keypairs, "keypair", nil, "solana-keygen keypair file; repeat for every required signer")
	flags.Bool("skip-preflight", false, "skip the node's preflight simulation")
	flags.Uint64("max-retries", 0, "node-side rebroadcast retries; 0 keeps the node default")
	flags.StringVar(&metricsPath, "metrics-out", "", "write loop metrics to this textfile")
	return cmd
}

func (a *app) send(ctx context.Context, cmd *cobra.Command, txFile string, keypairs []string, metricsPath string) error {
	data, err := os.ReadFile(txFile)
	if err != nil {
		return errors.Wrap(err, "read transaction")
	}
	tx, err := solanaconn.ParseTransaction(string(data))
	if err != nil {
		return err
	}
	signers := make([]confirm.Signer, 0, len(keypairs))
	for _, path := range keypairs {
		s, err := solanaconn.LoadKeypair(path)
		if err != nil {
			return err
		}
		signers = append(signers, s)
	}

	conn, closeConn, err := a.connect()
	if err != nil {
		return err
	}
	defer closeConn()

	pc, reg, err := a.pollerConfig()
	if err != nil {
		return err
	}
	sig, err := client.SendAndConfirmTransaction(ctx, conn, tx, signers, a.cfg.SendOptions(pc))
	if mErr := writeMetrics(metricsPath, reg); mErr != nil {
		a.log.Warn("metrics not written", zap.Error(mErr))
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]string{"signature": string(sig)})
}
