// Package types defines the data types shared by the confirmation
// poller, its transports and its connection adapters.
//
// Wire types are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns (gRPC codec
// registration) are handled in the transport packages.
package types

// Height is a block height as reported by the ledger.
type Height uint64

// Signature identifies a submitted transaction for its whole lifetime.
// It is opaque to this module; Solana adapters use the base58 form.
type Signature string

// Blockhash is a recent ledger checkpoint bound into a transaction.
type Blockhash string

// BlockhashWithExpiry pairs a blockhash with the last height at which a
// transaction bound to it can still be included.
type BlockhashWithExpiry struct {
	Blockhash Blockhash `cramberry:"1"`
	// ExpiryHeight is recorded once at submission and never changes.
	ExpiryHeight Height `cramberry:"2"`
}

// SubmitOptions are forwarded to the node with a raw transaction. Use
// SubmitRecord on the wire.
type SubmitOptions struct {
	SkipPreflight       bool
	PreflightCommitment Commitment
	// MaxRetries caps node-side rebroadcasts. Nil leaves the node default.
	MaxRetries *uint64
}
