package poller

import (
	"time"

	"github.com/fardream/confirm-solana-transaction/types"
)

// Recorder observes the confirmation loop.
type Recorder interface {
	// Attempt is called at the start of every iteration.
	Attempt()
	// TransientFailure is called when a query fails and is retried.
	// op is "get_signature_status" or "get_block_height".
	TransientFailure(op string)
	// Outcome is called once per loop with its terminal kind.
	Outcome(kind types.OutcomeKind, elapsed time.Duration)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) Attempt()                                 {}
func (NopRecorder) TransientFailure(string)                  {}
func (NopRecorder) Outcome(types.OutcomeKind, time.Duration) {}
