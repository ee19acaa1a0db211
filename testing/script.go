package confirmtest

import (
	"context"
	"sync"

	"github.com/fardream/confirm-solana-transaction/types"
)

// Step is what the network reports during one poll iteration: the
// answer to the status query and, if the loop asks, the chain height.
type Step struct {
	Status    *types.SignatureStatus
	StatusErr error
	Height    types.Height
	HeightErr error
}

// Absent is a step where the network has no status for the signature.
func Absent(height types.Height) Step {
	return Step{Height: height}
}

// Landed returns a status observed at level with the given
// confirmation count.
func Landed(level types.Commitment, confirmations uint64) *types.SignatureStatus {
	return &types.SignatureStatus{
		Slot:               1,
		Confirmations:      &confirmations,
		ConfirmationStatus: level,
	}
}

// Rooted returns a finalized status that no longer reports a
// confirmation count.
func Rooted() *types.SignatureStatus {
	return &types.SignatureStatus{Slot: 1, ConfirmationStatus: types.CommitmentFinalized}
}

// Failed returns a status for a transaction the ledger rejected.
func Failed(cause string) *types.SignatureStatus {
	zero := uint64(0)
	return &types.SignatureStatus{
		Slot:               1,
		Confirmations:      &zero,
		Err:                cause,
		ConfirmationStatus: types.CommitmentProcessed,
	}
}

// Scripted returns a MockConnection that replays steps, one per status
// query. Height queries answer with the height of the current step. The
// last step repeats forever.
func Scripted(steps ...Step) *MockConnection {
	if len(steps) == 0 {
		steps = []Step{{}}
	}
	s := &script{steps: steps, cur: -1}
	return &MockConnection{
		GetSignatureStatusFn: s.status,
		GetBlockHeightFn:     s.height,
	}
}

type script struct {
	mu    sync.Mutex
	steps []Step
	cur   int
}

func (s *script) status(context.Context, types.Signature) (*types.SignatureStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur < len(s.steps)-1 {
		s.cur++
	}
	step := s.steps[s.cur]
	return step.Status, step.StatusErr
}

func (s *script) height(context.Context, types.Commitment) (types.Height, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	step := s.steps[max(s.cur, 0)]
	return step.Height, step.HeightErr
}
