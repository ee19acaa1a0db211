// Package server provides the serving-side wrapper placed in front of a
// backend connection when it is exposed to remote callers. It rejects
// malformed requests before they reach the backend and logs every call.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

var (
	// ErrEmptySignature is returned for a status query without a signature.
	ErrEmptySignature = errors.New("empty signature")
	// ErrEmptyTransaction is returned for a submission without payload.
	ErrEmptyTransaction = errors.New("empty transaction")
)

// Compile-time interface check.
var _ confirm.Connection = (*Server)(nil)

// Server wraps a backend connection with request validation and call
// logging. Validation failures are permanent: retrying cannot fix them.
type Server struct {
	backend confirm.Connection
	log     *zap.Logger
}

// New creates a Server wrapping backend. A nil logger discards output.
func New(backend confirm.Connection, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{backend: backend, log: log.Named("server")}
}

// GetSignatureStatus returns the backend's status for sig.
func (s *Server) GetSignatureStatus(ctx context.Context, sig types.Signature) (*types.SignatureStatus, error) {
	if sig == "" {
		return nil, backoff.Permanent(ErrEmptySignature)
	}
	start := time.Now()
	status, err := s.backend.GetSignatureStatus(ctx, sig)
	s.observe("GetSignatureStatus", start, err, zap.String("signature", string(sig)), zap.Bool("found", status != nil))
	return status, err
}

// GetBlockHeight returns the backend's height at commitment.
func (s *Server) GetBlockHeight(ctx context.Context, commitment types.Commitment) (types.Height, error) {
	if err := validCommitment(commitment); err != nil {
		return 0, err
	}
	start := time.Now()
	height, err := s.backend.GetBlockHeight(ctx, commitment)
	s.observe("GetBlockHeight", start, err, zap.Stringer("commitment", commitment), zap.Uint64("height", uint64(height)))
	return height, err
}

// GetLatestBlockhash returns a fresh blockhash from the backend.
func (s *Server) GetLatestBlockhash(ctx context.Context, commitment types.Commitment) (types.BlockhashWithExpiry, error) {
	if err := validCommitment(commitment); err != nil {
		return types.BlockhashWithExpiry{}, err
	}
	start := time.Now()
	bh, err := s.backend.GetLatestBlockhash(ctx, commitment)
	s.observe("GetLatestBlockhash", start, err, zap.Stringer("commitment", commitment), zap.Uint64("expiry_height", uint64(bh.ExpiryHeight)))
	return bh, err
}

// SubmitRawTransaction forwards a signed transaction to the backend.
func (s *Server) SubmitRawTransaction(ctx context.Context, raw []byte, opts types.SubmitOptions) (types.Signature, error) {
	if len(raw) == 0 {
		return "", backoff.Permanent(ErrEmptyTransaction)
	}
	if opts.PreflightCommitment != types.CommitmentUnspecified {
		if err := validCommitment(opts.PreflightCommitment); err != nil {
			return "", err
		}
	}
	start := time.Now()
	sig, err := s.backend.SubmitRawTransaction(ctx, raw, opts)
	s.observe("SubmitRawTransaction", start, err, zap.Int("bytes", len(raw)), zap.String("signature", string(sig)))
	return sig, err
}

func (s *Server) observe(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("method", method), zap.Duration("took", time.Since(start)))
	if err != nil {
		s.log.Warn("backend call failed", append(fields, zap.Error(err))...)
		return
	}
	s.log.Debug("backend call", fields...)
}

func validCommitment(c types.Commitment) error {
	if _, err := c.SatisfiedBy(); err != nil {
		return backoff.Permanent(err)
	}
	return nil
}
