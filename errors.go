package confirm

import (
	"errors"
	"fmt"

	"github.com/fardream/confirm-solana-transaction/types"
)

var (
	// ErrUnsupportedCommitment is returned before any network call when
	// the requested commitment is not processed, confirmed or finalized.
	ErrUnsupportedCommitment = types.ErrUnsupportedCommitment

	// ErrNonceTransactionUnsupported is returned when a durable-nonce
	// transaction is passed to the blockhash-expiry confirmation flow.
	ErrNonceTransactionUnsupported = errors.New("durable nonce transactions are not supported by blockhash confirmation")
)

// ConfirmError is a terminal, non-successful confirmation outcome.
type ConfirmError struct {
	Kind      types.OutcomeKind
	Signature types.Signature
	Message   string
	Cause     error
}

func (e *ConfirmError) Error() string {
	msg := fmt.Sprintf("transaction %s %s", e.Signature, e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfirmError) Unwrap() error { return e.Cause }

// OutcomeError converts a terminal outcome into an error. It returns nil
// for a confirmed outcome.
func OutcomeError(o types.Outcome) error {
	if o.Confirmed() {
		return nil
	}
	return &ConfirmError{
		Kind:      o.Kind,
		Signature: o.Signature,
		Message:   o.Message,
		Cause:     o.Cause,
	}
}

// AsConfirmError checks whether an error is a ConfirmError and returns it.
func AsConfirmError(err error) (*ConfirmError, bool) {
	var ce *ConfirmError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

func isKind(err error, kind types.OutcomeKind) (*ConfirmError, bool) {
	ce, ok := AsConfirmError(err)
	if !ok || ce.Kind != kind {
		return nil, false
	}
	return ce, true
}

// IsDropped checks whether err reports a transaction whose blockhash
// expired before it landed.
func IsDropped(err error) (*ConfirmError, bool) { return isKind(err, types.OutcomeDropped) }

// IsTimeout checks whether err reports an exceeded confirmation deadline.
func IsTimeout(err error) (*ConfirmError, bool) { return isKind(err, types.OutcomeTimeout) }

// IsOnChainError checks whether err reports a transaction the ledger
// executed and rejected.
func IsOnChainError(err error) (*ConfirmError, bool) { return isKind(err, types.OutcomeOnChainError) }

// IsUnrecoverable checks whether err reports an RPC failure that
// retrying cannot fix.
func IsUnrecoverable(err error) (*ConfirmError, bool) {
	return isKind(err, types.OutcomeUnrecoverable)
}
