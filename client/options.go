package client

import (
	"time"

	"github.com/fardream/confirm-solana-transaction/poller"
	"github.com/fardream/confirm-solana-transaction/types"
)

// DefaultSendTimeout bounds SendAndConfirmTransaction when no timeout is given.
const DefaultSendTimeout = 60 * time.Second

// ConfirmOptions configures ConfirmTransaction.
type ConfirmOptions struct {
	// Commitment to wait for. Unspecified means finalized.
	Commitment types.Commitment
	// Timeout bounds polling. Zero or negative polls until ctx ends.
	Timeout time.Duration
	// Poller controls cadence, logging and metrics.
	Poller poller.Config
}

// SendOptions configures SendAndConfirmTransaction.
type SendOptions struct {
	// Commitment to wait for, also used for the blockhash and preflight.
	// Unspecified means finalized.
	Commitment types.Commitment
	// SkipPreflight asks the node not to simulate before broadcasting.
	SkipPreflight bool
	// MaxRetries caps node-side rebroadcasts. Nil leaves the node default.
	MaxRetries *uint64
	// Timeout bounds confirmation. Zero means DefaultSendTimeout,
	// negative polls until ctx ends.
	Timeout time.Duration
	// Poller controls cadence, logging and metrics.
	Poller poller.Config
}

func commitmentOrDefault(c types.Commitment) types.Commitment {
	if c == types.CommitmentUnspecified {
		return types.CommitmentFinalized
	}
	return c
}

func (o SendOptions) timeout() time.Duration {
	switch {
	case o.Timeout == 0:
		return DefaultSendTimeout
	case o.Timeout < 0:
		return 0
	default:
		return o.Timeout
	}
}
