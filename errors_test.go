package confirm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fardream/confirm-solana-transaction/types"
)

func TestOutcomeError(t *testing.T) {
	if err := OutcomeError(types.Outcome{Kind: types.OutcomeConfirmed, Signature: "sig"}); err != nil {
		t.Fatalf("expected nil error for confirmed outcome, got %v", err)
	}

	err := OutcomeError(types.Outcome{
		Kind:      types.OutcomeOnChainError,
		Signature: "5VERv8",
		Message:   "InstructionError",
	})
	expected := "transaction 5VERv8 on_chain_error: InstructionError"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestConfirmErrorPredicates(t *testing.T) {
	dropped := OutcomeError(types.Outcome{Kind: types.OutcomeDropped, Signature: "a"})

	// Direct.
	ce, ok := IsDropped(dropped)
	if !ok {
		t.Fatal("expected IsDropped to return true")
	}
	if ce.Signature != "a" {
		t.Errorf("expected signature a, got %s", ce.Signature)
	}

	// Wrapped.
	wrapped := fmt.Errorf("send: %w", dropped)
	if _, ok := IsDropped(wrapped); !ok {
		t.Fatal("expected IsDropped to unwrap wrapped error")
	}

	// Other kinds.
	if _, ok := IsTimeout(dropped); ok {
		t.Fatal("dropped is not a timeout")
	}
	if _, ok := IsOnChainError(dropped); ok {
		t.Fatal("dropped is not an on-chain error")
	}

	// Non-confirm error and nil.
	if _, ok := IsDropped(errors.New("just a regular error")); ok {
		t.Fatal("expected IsDropped to return false for regular error")
	}
	if _, ok := IsDropped(nil); ok {
		t.Fatal("expected IsDropped to return false for nil")
	}
}

func TestUnrecoverableUnwrapsCause(t *testing.T) {
	cause := errors.New("method not found")
	err := OutcomeError(types.Outcome{Kind: types.OutcomeUnrecoverable, Signature: "b", Cause: cause})
	if _, ok := IsUnrecoverable(err); !ok {
		t.Fatal("expected IsUnrecoverable to return true")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable with errors.Is")
	}
	if !errors.Is(ErrUnsupportedCommitment, types.ErrUnsupportedCommitment) {
		t.Fatal("expected re-exported sentinel to match")
	}
}
