package types_test

import (
	"testing"

	"github.com/fardream/confirm-solana-transaction/types"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out T
	if err := cramberry.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return out
}

func TestBlockhashWithExpiry_RoundTrip(t *testing.T) {
	v := types.BlockhashWithExpiry{Blockhash: "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N", ExpiryHeight: 1_000_150}
	got := roundTrip(t, v)
	if got != v {
		t.Fatalf("BlockhashWithExpiry round-trip failed: got %+v, want %+v", got, v)
	}
}

func TestStatusRecord_RoundTrip(t *testing.T) {
	confirmations := uint64(3)
	v := &types.SignatureStatus{
		Slot:               812,
		Confirmations:      &confirmations,
		Err:                "InstructionError",
		ConfirmationStatus: types.CommitmentConfirmed,
	}
	got := roundTrip(t, types.NewStatusRecord(v)).Status()
	if got == nil || got.Slot != v.Slot || got.Err != v.Err || got.ConfirmationStatus != v.ConfirmationStatus {
		t.Fatalf("StatusRecord round-trip failed: got %+v", got)
	}
	if got.Confirmations == nil || *got.Confirmations != 3 {
		t.Fatalf("StatusRecord.Confirmations lost: %v", got.Confirmations)
	}

	// A rooted status carries no confirmation count.
	rooted := roundTrip(t, types.NewStatusRecord(&types.SignatureStatus{Slot: 9, ConfirmationStatus: types.CommitmentFinalized})).Status()
	if rooted == nil || rooted.Confirmations != nil {
		t.Fatalf("expected rooted status without count, got %+v", rooted)
	}

	if absent := roundTrip(t, types.NewStatusRecord(nil)).Status(); absent != nil {
		t.Fatalf("expected nil status, got %+v", absent)
	}
}

func TestStatusRecord_ZeroConfirmations(t *testing.T) {
	zero := uint64(0)
	v := &types.SignatureStatus{Confirmations: &zero, ConfirmationStatus: types.CommitmentProcessed}
	got := roundTrip(t, types.NewStatusRecord(v)).Status()
	if got == nil || got.Confirmations == nil || *got.Confirmations != 0 {
		t.Fatalf("zero confirmation count lost: %+v", got)
	}

	finalizedOnly, err := types.CommitmentFinalized.SatisfiedBy()
	if err != nil {
		t.Fatal(err)
	}
	if got.Satisfies(finalizedOnly) {
		t.Fatal("processed status with zero confirmations must not satisfy finalized")
	}
}

func TestSubmitRecord_RoundTrip(t *testing.T) {
	zero := uint64(0)
	v := types.SubmitOptions{SkipPreflight: true, PreflightCommitment: types.CommitmentConfirmed, MaxRetries: &zero}
	got := roundTrip(t, types.NewSubmitRecord(v)).Options()
	if !got.SkipPreflight || got.PreflightCommitment != types.CommitmentConfirmed {
		t.Fatalf("SubmitRecord round-trip failed: got %+v", got)
	}
	if got.MaxRetries == nil || *got.MaxRetries != 0 {
		t.Fatalf("explicit zero MaxRetries lost: %v", got.MaxRetries)
	}

	if def := roundTrip(t, types.NewSubmitRecord(types.SubmitOptions{})).Options(); def.MaxRetries != nil {
		t.Fatalf("expected node default MaxRetries, got %d", *def.MaxRetries)
	}
}
