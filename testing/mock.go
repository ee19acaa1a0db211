// Package confirmtest provides test utilities for code built on the
// confirmation loop: a configurable mock connection, scripted
// status/height sequences, and a contract suite for Connection
// implementations.
package confirmtest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// Compile-time interface check.
var _ confirm.Connection = (*MockConnection)(nil)

// DefaultBlockhash is what an unconfigured MockConnection hands out.
var DefaultBlockhash = types.BlockhashWithExpiry{
	Blockhash:    "GHtXQBsoZHVnNFa9YevAzFr17DJjgHXk3ycTKD5xD3Zi",
	ExpiryHeight: 150,
}

// MockConnection is a configurable mock connection. All methods are
// configurable via function fields. Unconfigured methods return
// sensible zero-value defaults: no status, height zero, DefaultBlockhash,
// and a signature derived from the submitted bytes.
type MockConnection struct {
	GetSignatureStatusFn   func(context.Context, types.Signature) (*types.SignatureStatus, error)
	GetBlockHeightFn       func(context.Context, types.Commitment) (types.Height, error)
	GetLatestBlockhashFn   func(context.Context, types.Commitment) (types.BlockhashWithExpiry, error)
	SubmitRawTransactionFn func(context.Context, []byte, types.SubmitOptions) (types.Signature, error)

	// Call counters (atomic for concurrent access).
	StatusCalls    atomic.Int64
	HeightCalls    atomic.Int64
	BlockhashCalls atomic.Int64
	SubmitCalls    atomic.Int64

	mu        sync.Mutex
	submitted [][]byte
}

func (m *MockConnection) GetSignatureStatus(ctx context.Context, sig types.Signature) (*types.SignatureStatus, error) {
	m.StatusCalls.Add(1)
	if m.GetSignatureStatusFn != nil {
		return m.GetSignatureStatusFn(ctx, sig)
	}
	return nil, nil
}

func (m *MockConnection) GetBlockHeight(ctx context.Context, commitment types.Commitment) (types.Height, error) {
	m.HeightCalls.Add(1)
	if m.GetBlockHeightFn != nil {
		return m.GetBlockHeightFn(ctx, commitment)
	}
	return 0, nil
}

func (m *MockConnection) GetLatestBlockhash(ctx context.Context, commitment types.Commitment) (types.BlockhashWithExpiry, error) {
	m.BlockhashCalls.Add(1)
	if m.GetLatestBlockhashFn != nil {
		return m.GetLatestBlockhashFn(ctx, commitment)
	}
	return DefaultBlockhash, nil
}

func (m *MockConnection) SubmitRawTransaction(ctx context.Context, raw []byte, opts types.SubmitOptions) (types.Signature, error) {
	m.SubmitCalls.Add(1)
	m.mu.Lock()
	m.submitted = append(m.submitted, append([]byte(nil), raw...))
	m.mu.Unlock()
	if m.SubmitRawTransactionFn != nil {
		return m.SubmitRawTransactionFn(ctx, raw, opts)
	}
	sum := sha256.Sum256(raw)
	return types.Signature(hex.EncodeToString(sum[:])), nil
}

// Submitted returns copies of every payload passed to SubmitRawTransaction.
func (m *MockConnection) Submitted() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.submitted))
	copy(out, m.submitted)
	return out
}
