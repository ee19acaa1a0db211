// Package client exposes the confirmation operations: waiting on an
// already submitted signature, and submitting a transaction bound to a
// fresh blockhash then waiting on it.
package client

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/poller"
	"github.com/fardream/confirm-solana-transaction/types"
)

var tracer = otel.Tracer("github.com/fardream/confirm-solana-transaction/client")

// ConfirmTransaction waits until sig reaches the requested commitment
// and returns its status. Any other terminal outcome is returned as a
// *confirm.ConfirmError; an unsupported commitment fails before any
// network call.
func ConfirmTransaction(ctx context.Context, conn confirm.StatusQuerier, expiry types.Height, sig types.Signature, opts ConfirmOptions) (*types.SignatureStatus, error) {
	commitment := commitmentOrDefault(opts.Commitment)

	ctx, span := tracer.Start(ctx, "confirm.ConfirmTransaction", trace.WithAttributes(
		attribute.String("confirm.signature", string(sig)),
		attribute.String("confirm.commitment", commitment.String()),
		attribute.Int64("confirm.expiry_height", int64(expiry)),
	))
	defer span.End()

	status, err := confirmSignature(ctx, conn, poller.Request{
		Signature:    sig,
		ExpiryHeight: expiry,
		Commitment:   commitment,
		Timeout:      opts.Timeout,
	}, opts.Poller, span)
	if err != nil {
		return nil, fail(span, err)
	}
	return status, nil
}

// SendAndConfirmTransaction binds tx to a fresh blockhash, signs it,
// submits it and waits for the requested commitment. The signature is
// returned only once confirmed.
//
// Durable-nonce transactions carry no blockhash expiry and are rejected
// with confirm.ErrNonceTransactionUnsupported.
func SendAndConfirmTransaction(ctx context.Context, conn confirm.Connection, tx confirm.Transaction, signers []confirm.Signer, opts SendOptions) (types.Signature, error) {
	commitment := commitmentOrDefault(opts.Commitment)

	ctx, span := tracer.Start(ctx, "confirm.SendAndConfirmTransaction", trace.WithAttributes(
		attribute.String("confirm.commitment", commitment.String()),
		attribute.Bool("confirm.skip_preflight", opts.SkipPreflight),
	))
	defer span.End()

	if tx.UsesDurableNonce() {
		return "", fail(span, confirm.ErrNonceTransactionUnsupported)
	}
	if _, err := commitment.SatisfiedBy(); err != nil {
		return "", fail(span, err)
	}

	latest, err := conn.GetLatestBlockhash(ctx, commitment)
	if err != nil {
		return "", fail(span, errors.Wrap(err, "get latest blockhash"))
	}
	if err := tx.SetBlockhash(latest.Blockhash); err != nil {
		return "", fail(span, errors.Wrapf(err, "bind blockhash %s", latest.Blockhash))
	}
	if err := tx.Sign(signers...); err != nil {
		return "", fail(span, errors.Wrap(err, "sign transaction"))
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fail(span, errors.Wrap(err, "serialize transaction"))
	}

	sig, err := conn.SubmitRawTransaction(ctx, raw, types.SubmitOptions{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: commitment,
		MaxRetries:          opts.MaxRetries,
	})
	if err != nil {
		return "", fail(span, errors.Wrap(err, "submit transaction"))
	}
	span.SetAttributes(
		attribute.String("confirm.signature", string(sig)),
		attribute.Int64("confirm.expiry_height", int64(latest.ExpiryHeight)),
	)

	if _, err := confirmSignature(ctx, conn, poller.Request{
		Signature:    sig,
		ExpiryHeight: latest.ExpiryHeight,
		Commitment:   commitment,
		Timeout:      opts.timeout(),
	}, opts.Poller, span); err != nil {
		return "", fail(span, err)
	}
	return sig, nil
}

func confirmSignature(ctx context.Context, conn confirm.StatusQuerier, req poller.Request, cfg poller.Config, span trace.Span) (*types.SignatureStatus, error) {
	out, err := poller.New(conn, cfg).Poll(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("confirm.outcome", out.Kind.String()),
		attribute.Int64("confirm.last_height", int64(out.Height)),
	)
	if err := confirm.OutcomeError(out); err != nil {
		return nil, err
	}
	return out.Status, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
