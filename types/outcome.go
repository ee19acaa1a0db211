package types

import "fmt"

// OutcomeKind is the terminal state a confirmation attempt resolves to.
type OutcomeKind uint8

const (
	OutcomeConfirmed OutcomeKind = iota + 1
	// OutcomeDropped means the blockhash window expired before the
	// transaction landed. Rebuild with a fresh blockhash and resubmit.
	OutcomeDropped
	// OutcomeOnChainError means the ledger executed and rejected it.
	OutcomeOnChainError
	// OutcomeTimeout means the deadline passed while it may still land.
	OutcomeTimeout
	// OutcomeUnrecoverable means the RPC collaborator failed in a way
	// retrying cannot fix.
	OutcomeUnrecoverable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeDropped:
		return "dropped"
	case OutcomeOnChainError:
		return "on_chain_error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeUnrecoverable:
		return "unrecoverable_rpc_error"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Outcome is the single terminal result of a confirmation attempt.
type Outcome struct {
	Kind      OutcomeKind
	Signature Signature
	// Status is set for OutcomeConfirmed and OutcomeOnChainError.
	Status *SignatureStatus
	// Height is the last height observed, if any was queried.
	Height Height
	// Cause is set for OutcomeUnrecoverable, and for OutcomeTimeout when
	// the context ended the loop.
	Cause   error
	Message string
}

// Confirmed reports whether the outcome is a success.
func (o Outcome) Confirmed() bool { return o.Kind == OutcomeConfirmed }
