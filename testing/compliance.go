package confirmtest

import (
	"context"
	"testing"

	"github.com/fardream/confirm-solana-transaction/types"
)

var commitments = []types.Commitment{
	types.CommitmentProcessed,
	types.CommitmentConfirmed,
	types.CommitmentFinalized,
}

// RunConnectionSuite verifies that a Connection behaves the way the
// confirmation loop relies on.
//
// The factory should return a fresh fixture for each test, backed by a
// chain that only moves when Advance is called.
func RunConnectionSuite(t *testing.T, factory func(t *testing.T) Fixture) {
	t.Helper()

	t.Run("heights_ordered_by_commitment", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		processed := h.Height(types.CommitmentProcessed)
		confirmed := h.Height(types.CommitmentConfirmed)
		finalized := h.Height(types.CommitmentFinalized)
		if finalized > confirmed || confirmed > processed {
			t.Errorf("heights out of order: finalized=%d confirmed=%d processed=%d", finalized, confirmed, processed)
		}
	})

	t.Run("heights_monotonic", func(t *testing.T) {
		f := factory(t)
		h := NewHarness(t, f)
		before := make(map[types.Commitment]types.Height)
		for _, c := range commitments {
			before[c] = h.Height(c)
		}
		f.Advance(3)
		for _, c := range commitments {
			if after := h.Height(c); after < before[c] {
				t.Errorf("%s height went backwards: %d -> %d", c, before[c], after)
			}
		}
	})

	t.Run("blockhash_expiry_ahead_of_height", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		for _, c := range commitments {
			bh := h.Blockhash(c)
			if bh.Blockhash == "" {
				t.Errorf("%s: empty blockhash", c)
			}
			if height := h.Height(c); bh.ExpiryHeight <= height {
				t.Errorf("%s: expiry height %d not ahead of height %d", c, bh.ExpiryHeight, height)
			}
		}
	})

	t.Run("unknown_signature_has_no_status", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		if status := h.Status("never-submitted"); status != nil {
			t.Errorf("expected nil status, got %+v", status)
		}
	})

	t.Run("submitted_transaction_lands", func(t *testing.T) {
		f := factory(t)
		h := NewHarness(t, f)
		raw, _ := h.Sign(types.CommitmentProcessed)
		sig := h.Submit(raw)
		status := h.AdvanceUntilStatus(sig, 16)
		if status.Errored() {
			t.Errorf("unexpected on-chain error: %s", status.Err)
		}
	})

	t.Run("resubmission_is_idempotent", func(t *testing.T) {
		h := NewHarness(t, factory(t))
		raw, _ := h.Sign(types.CommitmentProcessed)
		first := h.Submit(raw)
		second := h.Submit(raw)
		if first != second {
			t.Errorf("resubmission changed signature: %s -> %s", first, second)
		}
	})

	t.Run("unsupported_commitment_rejected", func(t *testing.T) {
		f := factory(t)
		if _, err := f.Conn.GetBlockHeight(context.Background(), types.Commitment(99)); err == nil {
			t.Error("expected error for unsupported commitment")
		}
	})
}
