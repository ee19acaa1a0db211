package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	confirmtest "github.com/fardream/confirm-solana-transaction/testing"
	"github.com/fardream/confirm-solana-transaction/types"
)

func fastConfig() Config {
	return Config{InitialBackoff: time.Millisecond, MaxBackoff: 4 * time.Millisecond}
}

func poll(t *testing.T, p *Poller, req Request) types.Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := p.Poll(ctx, req)
	require.NoError(t, err)
	require.Equal(t, req.Signature, out.Signature)
	return out
}

func TestPollConfirmedAfterAbsentStatuses(t *testing.T) {
	conn := confirmtest.Scripted(
		confirmtest.Absent(90),
		confirmtest.Absent(95),
		confirmtest.Step{Status: confirmtest.Landed(types.CommitmentConfirmed, 0), Height: 98},
	)
	out := poll(t, New(conn, fastConfig()), Request{
		Signature:    "sig-confirmed",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentConfirmed,
	})

	require.Equal(t, types.OutcomeConfirmed, out.Kind)
	require.Equal(t, types.CommitmentConfirmed, out.Status.ConfirmationStatus)
	require.EqualValues(t, 3, conn.StatusCalls.Load())
	require.EqualValues(t, 2, conn.HeightCalls.Load())
}

func TestPollDroppedWhenHeightPassesExpiry(t *testing.T) {
	conn := confirmtest.Scripted(
		confirmtest.Absent(90),
		confirmtest.Absent(101),
	)
	out := poll(t, New(conn, fastConfig()), Request{
		Signature:    "sig-dropped",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
	})

	require.Equal(t, types.OutcomeDropped, out.Kind)
	require.EqualValues(t, 101, out.Height)
	require.Nil(t, out.Status)
}

func TestPollDroppedOnInsufficientStatus(t *testing.T) {
	conn := confirmtest.Scripted(
		confirmtest.Step{Status: confirmtest.Landed(types.CommitmentProcessed, 0), Height: 100},
		confirmtest.Step{Status: confirmtest.Landed(types.CommitmentProcessed, 0), Height: 102},
	)
	out := poll(t, New(conn, fastConfig()), Request{
		Signature:    "sig-insufficient",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
	})

	require.Equal(t, types.OutcomeDropped, out.Kind)
	require.EqualValues(t, 2, conn.HeightCalls.Load())
}

func TestPollTimeout(t *testing.T) {
	conn := confirmtest.Scripted(confirmtest.Absent(50))
	p := New(conn, Config{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond})

	start := time.Now()
	out := poll(t, p, Request{
		Signature:    "sig-timeout",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
		Timeout:      time.Second,
	})

	require.Equal(t, types.OutcomeTimeout, out.Kind)
	require.GreaterOrEqual(t, time.Since(start), time.Second)
	require.EqualValues(t, 50, out.Height)
	require.NoError(t, out.Cause)
}

func TestPollTimeoutDoesNotOversleepDeadline(t *testing.T) {
	conn := confirmtest.Scripted(confirmtest.Absent(50))
	p := New(conn, Config{InitialBackoff: 5 * time.Second, MaxBackoff: 5 * time.Second})

	start := time.Now()
	out := poll(t, p, Request{
		Signature:    "sig-short-deadline",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
		Timeout:      300 * time.Millisecond,
	})

	require.Equal(t, types.OutcomeTimeout, out.Kind)
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	require.Less(t, elapsed, 2*time.Second, "final wait is cut at the deadline")
	require.EqualValues(t, 2, conn.StatusCalls.Load())
}

func TestPollOnChainErrorIgnoresHeight(t *testing.T) {
	conn := confirmtest.Scripted(confirmtest.Step{Status: confirmtest.Failed("InstructionError"), Height: 500})
	out := poll(t, New(conn, fastConfig()), Request{
		Signature:    "sig-failed",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
	})

	require.Equal(t, types.OutcomeOnChainError, out.Kind)
	require.Equal(t, "InstructionError", out.Message)
	require.EqualValues(t, 0, conn.HeightCalls.Load())
}

func TestPollSwallowsTransientFailures(t *testing.T) {
	unavailable := errors.New("503 service unavailable")
	conn := confirmtest.Scripted(
		confirmtest.Step{StatusErr: unavailable},
		confirmtest.Step{HeightErr: unavailable},
		confirmtest.Step{StatusErr: unavailable},
		confirmtest.Step{Status: confirmtest.Rooted()},
	)
	rec := &countingRecorder{}
	cfg := fastConfig()
	cfg.Recorder = rec

	out := poll(t, New(conn, cfg), Request{
		Signature:    "sig-transient",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
	})

	require.Equal(t, types.OutcomeConfirmed, out.Kind)
	require.NoError(t, out.Cause)
	require.Equal(t, 4, rec.attempts)
	require.Equal(t, map[string]int{opStatus: 2, opHeight: 1}, rec.transient)
	require.Equal(t, []types.OutcomeKind{types.OutcomeConfirmed}, rec.outcomes)
}

func TestPollUnrecoverableOnPermanentFailure(t *testing.T) {
	cause := errors.New("method not found")
	conn := confirmtest.Scripted(confirmtest.Step{StatusErr: backoff.Permanent(cause)})
	out := poll(t, New(conn, fastConfig()), Request{
		Signature:    "sig-permanent",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
	})

	require.Equal(t, types.OutcomeUnrecoverable, out.Kind)
	require.ErrorIs(t, out.Cause, cause)
	require.EqualValues(t, 1, conn.StatusCalls.Load())
}

func TestPollConfirmsAfterDeadline(t *testing.T) {
	conn := confirmtest.Scripted(
		confirmtest.Absent(10),
		confirmtest.Step{Status: confirmtest.Rooted(), Height: 10},
	)
	p := New(conn, Config{InitialBackoff: 60 * time.Millisecond, MaxBackoff: 60 * time.Millisecond})

	out := poll(t, p, Request{
		Signature:    "sig-late",
		ExpiryHeight: 100,
		Commitment:   types.CommitmentFinalized,
		Timeout:      30 * time.Millisecond,
	})
	require.Equal(t, types.OutcomeConfirmed, out.Kind)
}

func TestPollRejectsUnsupportedCommitment(t *testing.T) {
	conn := confirmtest.Scripted()
	_, err := New(conn, fastConfig()).Poll(context.Background(), Request{
		Signature:  "sig",
		Commitment: types.Commitment(9),
	})
	require.ErrorIs(t, err, types.ErrUnsupportedCommitment)
	require.EqualValues(t, 0, conn.StatusCalls.Load())
}

func TestPollContextEnds(t *testing.T) {
	conn := confirmtest.Scripted(confirmtest.Absent(1))
	p := New(conn, Config{InitialBackoff: time.Hour, MaxBackoff: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	out, err := p.Poll(ctx, Request{Signature: "sig", ExpiryHeight: 100, Commitment: types.CommitmentConfirmed})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeTimeout, out.Kind)
	require.ErrorIs(t, out.Cause, context.DeadlineExceeded)

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	out, err = p.Poll(ctx, Request{Signature: "sig", ExpiryHeight: 100, Commitment: types.CommitmentConfirmed})
	require.NoError(t, err)
	require.Equal(t, types.OutcomeUnrecoverable, out.Kind)
	require.ErrorIs(t, out.Cause, context.Canceled)
}

func TestPollConcurrentSignaturesAreIndependent(t *testing.T) {
	conn := &confirmtest.MockConnection{
		GetSignatureStatusFn: func(_ context.Context, sig types.Signature) (*types.SignatureStatus, error) {
			if sig == "landed" {
				return confirmtest.Rooted(), nil
			}
			return nil, nil
		},
		GetBlockHeightFn: func(context.Context, types.Commitment) (types.Height, error) {
			return 200, nil
		},
	}
	p := New(conn, fastConfig())

	var wg sync.WaitGroup
	results := make(map[types.Signature]types.OutcomeKind)
	var mu sync.Mutex
	for _, sig := range []types.Signature{"landed", "lost"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.Poll(context.Background(), Request{Signature: sig, ExpiryHeight: 150, Commitment: types.CommitmentFinalized})
			assert.NoError(t, err)
			mu.Lock()
			results[sig] = out.Kind
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, types.OutcomeConfirmed, results["landed"])
	require.Equal(t, types.OutcomeDropped, results["lost"])
}

type countingRecorder struct {
	attempts  int
	transient map[string]int
	outcomes  []types.OutcomeKind
}

func (r *countingRecorder) Attempt() { r.attempts++ }

func (r *countingRecorder) TransientFailure(op string) {
	if r.transient == nil {
		r.transient = make(map[string]int)
	}
	r.transient[op]++
}

func (r *countingRecorder) Outcome(kind types.OutcomeKind, _ time.Duration) {
	r.outcomes = append(r.outcomes, kind)
}
