// Package poller implements the confirmation loop: it repeatedly
// queries a signature's status and the chain height until the
// transaction is confirmed, rejected on chain, dropped by the network,
// out of time, or the RPC collaborator fails for good.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

const (
	opStatus = "get_signature_status"
	opHeight = "get_block_height"
)

// Request identifies one confirmation attempt.
type Request struct {
	Signature types.Signature
	// ExpiryHeight is the last height the transaction's blockhash is valid at.
	ExpiryHeight types.Height
	Commitment   types.Commitment
	// Timeout bounds the loop. Zero or negative polls until ctx ends.
	Timeout time.Duration
}

// Poller drives the confirmation loop. It holds no per-request state
// and may be shared by concurrent callers.
type Poller struct {
	querier confirm.StatusQuerier
	cfg     Config
	now     func() time.Time
}

// New creates a poller over q.
func New(q confirm.StatusQuerier, cfg Config) *Poller {
	ApplyDefaults(&cfg)
	return &Poller{querier: q, cfg: cfg, now: time.Now}
}

// Poll runs the loop for req and returns its single terminal outcome.
// The only error is ErrUnsupportedCommitment, returned before any
// network call.
func (p *Poller) Poll(ctx context.Context, req Request) (types.Outcome, error) {
	satisfied, err := req.Commitment.SatisfiedBy()
	if err != nil {
		return types.Outcome{}, err
	}

	start := p.now()
	sched := NewScheduler(p.cfg, start, req.Timeout)
	log := p.cfg.Logger.With(
		zap.String("signature", string(req.Signature)),
		zap.Stringer("commitment", req.Commitment),
		zap.Uint64("expiry_height", uint64(req.ExpiryHeight)),
	)

	var lastHeight types.Height
	out, attempts := types.Outcome{}, 0
	for done := false; !done; {
		attempts++
		p.cfg.Recorder.Attempt()

		var height types.Height
		out, height, done = p.step(ctx, log, req, satisfied, attempts)
		if height > 0 {
			lastHeight = height
		}
		if done {
			break
		}

		if sched.Expired(p.now()) {
			deadline, _ := sched.Deadline()
			out = types.Outcome{
				Kind:    types.OutcomeTimeout,
				Message: fmt.Sprintf("deadline %s passed after %d attempts", deadline.Format(time.RFC3339Nano), attempts),
			}
			break
		}

		wait := sched.Clamp(sched.Next(), p.now())
		log.Debug("transaction pending", zap.Int("attempt", attempts), zap.Duration("wait", wait))
		if err := sleep(ctx, wait); err != nil {
			out, done = interrupted(err), true
		}
	}

	out.Signature = req.Signature
	if out.Height == 0 {
		out.Height = lastHeight
	}
	p.finish(log, out, attempts, p.now().Sub(start))
	return out, nil
}

// step runs one iteration of the Polling state. done is false when the
// loop must back off and retry.
func (p *Poller) step(ctx context.Context, log *zap.Logger, req Request, satisfied types.CommitmentSet, attempt int) (out types.Outcome, height types.Height, done bool) {
	status, err := p.querier.GetSignatureStatus(ctx, req.Signature)
	if err != nil {
		out, done = p.failure(ctx, log, opStatus, attempt, err)
		return out, 0, done
	}

	switch {
	case status.Errored():
		return types.Outcome{Kind: types.OutcomeOnChainError, Status: status, Message: status.Err}, 0, true
	case status != nil && status.Satisfies(satisfied):
		return types.Outcome{Kind: types.OutcomeConfirmed, Status: status}, 0, true
	}

	// Absent or insufficient: only the height can tell pending from dropped.
	height, err = p.querier.GetBlockHeight(ctx, req.Commitment)
	if err != nil {
		out, done = p.failure(ctx, log, opHeight, attempt, err)
		return out, 0, done
	}
	if IsDropped(height, req.ExpiryHeight) {
		return types.Outcome{
			Kind:    types.OutcomeDropped,
			Height:  height,
			Message: fmt.Sprintf("block height %d exceeded expiry height %d", height, req.ExpiryHeight),
		}, height, true
	}
	return types.Outcome{}, height, false
}

// failure classifies a failed query. Transient failures are logged and
// swallowed; permanent ones and context ends are terminal.
func (p *Poller) failure(ctx context.Context, log *zap.Logger, op string, attempt int, err error) (types.Outcome, bool) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return interrupted(ctxErr), true
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return types.Outcome{Kind: types.OutcomeUnrecoverable, Cause: err, Message: op}, true
	}
	p.cfg.Recorder.TransientFailure(op)
	log.Warn("transient rpc failure", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
	return types.Outcome{}, false
}

func (p *Poller) finish(log *zap.Logger, out types.Outcome, attempts int, elapsed time.Duration) {
	p.cfg.Recorder.Outcome(out.Kind, elapsed)
	fields := []zap.Field{
		zap.Stringer("outcome", out.Kind),
		zap.Int("attempts", attempts),
		zap.Duration("elapsed", elapsed),
		zap.Uint64("height", uint64(out.Height)),
	}
	if out.Confirmed() {
		log.Info("transaction confirmed", fields...)
		return
	}
	if out.Message != "" {
		fields = append(fields, zap.String("message", out.Message))
	}
	if out.Cause != nil {
		fields = append(fields, zap.Error(out.Cause))
	}
	log.Warn("transaction not confirmed", fields...)
}

// interrupted maps a context end onto a terminal outcome.
func interrupted(err error) types.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.Outcome{Kind: types.OutcomeTimeout, Cause: err, Message: "context deadline exceeded"}
	}
	return types.Outcome{Kind: types.OutcomeUnrecoverable, Cause: err, Message: "context canceled"}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
