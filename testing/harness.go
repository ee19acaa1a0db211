package confirmtest

import (
	"context"
	"testing"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// Fixture is a connection under test plus the levers a test needs to
// move the chain behind it.
type Fixture struct {
	Conn confirm.Connection
	// Advance produces n blocks on the backing chain.
	Advance func(n uint64)
	// NewTx returns a fresh unsigned transaction and the signers it needs.
	NewTx func() (confirm.Transaction, []confirm.Signer)
}

// Harness provides convenience calls against a Fixture that fail the
// test on error.
type Harness struct {
	t *testing.T
	f Fixture
}

// NewHarness creates a harness over f.
func NewHarness(t *testing.T, f Fixture) *Harness {
	t.Helper()
	return &Harness{t: t, f: f}
}

// Height returns the height at commitment.
func (h *Harness) Height(commitment types.Commitment) types.Height {
	h.t.Helper()
	height, err := h.f.Conn.GetBlockHeight(context.Background(), commitment)
	if err != nil {
		h.t.Fatalf("GetBlockHeight(%s) failed: %v", commitment, err)
	}
	return height
}

// Blockhash fetches a fresh blockhash at commitment.
func (h *Harness) Blockhash(commitment types.Commitment) types.BlockhashWithExpiry {
	h.t.Helper()
	bh, err := h.f.Conn.GetLatestBlockhash(context.Background(), commitment)
	if err != nil {
		h.t.Fatalf("GetLatestBlockhash(%s) failed: %v", commitment, err)
	}
	return bh
}

// Sign binds a fresh blockhash to a new transaction, signs and
// serializes it.
func (h *Harness) Sign(commitment types.Commitment) ([]byte, types.BlockhashWithExpiry) {
	h.t.Helper()
	bh := h.Blockhash(commitment)
	tx, signers := h.f.NewTx()
	if err := tx.SetBlockhash(bh.Blockhash); err != nil {
		h.t.Fatalf("SetBlockhash failed: %v", err)
	}
	if err := tx.Sign(signers...); err != nil {
		h.t.Fatalf("Sign failed: %v", err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		h.t.Fatalf("MarshalBinary failed: %v", err)
	}
	return raw, bh
}

// Submit submits raw with preflight skipped.
func (h *Harness) Submit(raw []byte) types.Signature {
	h.t.Helper()
	sig, err := h.f.Conn.SubmitRawTransaction(context.Background(), raw, types.SubmitOptions{
		SkipPreflight:       true,
		PreflightCommitment: types.CommitmentProcessed,
	})
	if err != nil {
		h.t.Fatalf("SubmitRawTransaction failed: %v", err)
	}
	if sig == "" {
		h.t.Fatal("SubmitRawTransaction returned an empty signature")
	}
	return sig
}

// Status returns the status of sig.
func (h *Harness) Status(sig types.Signature) *types.SignatureStatus {
	h.t.Helper()
	status, err := h.f.Conn.GetSignatureStatus(context.Background(), sig)
	if err != nil {
		h.t.Fatalf("GetSignatureStatus failed: %v", err)
	}
	return status
}

// AdvanceUntilStatus produces blocks one at a time until sig has a
// status, failing after limit blocks.
func (h *Harness) AdvanceUntilStatus(sig types.Signature, limit int) *types.SignatureStatus {
	h.t.Helper()
	for i := 0; i < limit; i++ {
		if status := h.Status(sig); status != nil {
			return status
		}
		h.f.Advance(1)
	}
	h.t.Fatalf("no status for %s after %d blocks", sig, limit)
	return nil
}
