// Package confirm confirms that a submitted ledger transaction reached
// a requested commitment level, telling "still pending" apart from
// "silently dropped by the network".
//
// The root package holds the capability interfaces the confirmation
// loop consumes and the terminal error taxonomy. The loop itself lives
// in package poller, the exposed operations in package client.
package confirm

import (
	"context"

	"github.com/fardream/confirm-solana-transaction/types"
)

// StatusQuerier is the read side of a ledger connection. It is all the
// confirmation loop needs once a signature and expiry height exist.
//
// Both methods may fail transiently. Implementations mark failures that
// retrying cannot fix with backoff.Permanent.
type StatusQuerier interface {
	// GetSignatureStatus returns the live status of sig, or nil when the
	// network reports nothing for it.
	GetSignatureStatus(ctx context.Context, sig types.Signature) (*types.SignatureStatus, error)

	// GetBlockHeight returns the chain height observed at commitment.
	GetBlockHeight(ctx context.Context, commitment types.Commitment) (types.Height, error)
}

// Connection is the full capability a submit-and-confirm flow needs.
// Implementations must be safe for concurrent use; this module never
// mutates them.
type Connection interface {
	StatusQuerier

	// GetLatestBlockhash returns a fresh blockhash and the last height a
	// transaction bound to it can land at.
	GetLatestBlockhash(ctx context.Context, commitment types.Commitment) (types.BlockhashWithExpiry, error)

	// SubmitRawTransaction submits a signed, serialized transaction and
	// returns its signature.
	SubmitRawTransaction(ctx context.Context, raw []byte, opts types.SubmitOptions) (types.Signature, error)
}

// Signer holds key material for one account that must sign a transaction.
type Signer interface {
	// PublicKey returns the raw public key of the signing account.
	PublicKey() []byte
	// Sign signs a serialized transaction message.
	Sign(message []byte) ([]byte, error)
}

// Transaction is an unsigned transaction built by the caller.
type Transaction interface {
	// UsesDurableNonce reports whether the transaction carries durable
	// nonce information instead of a recent blockhash.
	UsesDurableNonce() bool
	// SetBlockhash binds a recent blockhash. Existing signatures are
	// invalidated.
	SetBlockhash(hash types.Blockhash) error
	// Sign signs the transaction with every required signer.
	Sign(signers ...Signer) error
	// MarshalBinary serializes the signed transaction for submission.
	MarshalBinary() ([]byte, error)
}
