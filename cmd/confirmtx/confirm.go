package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fardream/confirm-solana-transaction/client"
	"github.com/fardream/confirm-solana-transaction/types"
)

func confirmCmd(a *app) *cobra.Command {
	var (
		expiry      uint64
		metricsPath string
	)
	cmd := &cobra.Command{
		Use:   "confirm <signature>",
		Short: "Wait for a submitted transaction to reach the commitment level.",
		Args:  cobra.ExactArgs(1),
		// --timeout bounds confirm separately from send.
		Annotations: map[string]string{"timeout": "confirm_timeout"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if expiry == 0 {
				return errors.New("--expiry-height is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.confirm(ctx, cmd, types.Signature(args[0]), types.Height(expiry), metricsPath)
		},
	}
	cmd.Flags().Uint64Var(&expiry, "expiry-height", 0, "last block height the transaction's blockhash is valid at")
	cmd.Flags().StringVar(&metricsPath, "metrics-out", "", "write loop metrics to this textfile")
	return cmd
}

func (a *app) confirm(ctx context.Context, cmd *cobra.Command, sig types.Signature, expiry types.Height, metricsPath string) error {
	conn, closeConn, err := a.connect()
	if err != nil {
		return err
	}
	defer closeConn()

	pc, reg, err := a.pollerConfig()
	if err != nil {
		return err
	}
	status, err := client.ConfirmTransaction(ctx, conn, expiry, sig, a.cfg.ConfirmOptions(pc))
	if mErr := writeMetrics(metricsPath, reg); mErr != nil {
		a.log.Warn("metrics not written", zap.Error(mErr))
	}
	if err != nil {
		return err
	}
	out := statusOutput{Signature: sig, Slot: status.Slot, Confirmations: status.Confirmations, Err: status.Err}
	out.ConfirmationStatus = status.ConfirmationStatus.String()
	return printJSON(cmd.OutOrStdout(), out)
}

type statusOutput struct {
	Signature          types.Signature `json:"signature"`
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	ConfirmationStatus string          `json:"confirmationStatus"`
	Err                string          `json:"err,omitempty"`
}
