package server

import (
	"context"
	"errors"
	"testing"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"

	confirmtest "github.com/fardream/confirm-solana-transaction/testing"
	"github.com/fardream/confirm-solana-transaction/types"
)

func isPermanent(err error) bool {
	var perm *backoff.PermanentError
	return errors.As(err, &perm)
}

func TestServerRejectsMalformedRequests(t *testing.T) {
	backend := &confirmtest.MockConnection{}
	s := New(backend, nil)
	ctx := context.Background()

	_, err := s.GetSignatureStatus(ctx, "")
	require.ErrorIs(t, err, ErrEmptySignature)
	require.True(t, isPermanent(err))

	_, err = s.GetBlockHeight(ctx, types.Commitment(12))
	require.ErrorIs(t, err, types.ErrUnsupportedCommitment)
	require.True(t, isPermanent(err))

	_, err = s.GetLatestBlockhash(ctx, types.CommitmentUnspecified)
	require.ErrorIs(t, err, types.ErrUnsupportedCommitment)

	_, err = s.SubmitRawTransaction(ctx, nil, types.SubmitOptions{})
	require.ErrorIs(t, err, ErrEmptyTransaction)

	_, err = s.SubmitRawTransaction(ctx, []byte{1}, types.SubmitOptions{PreflightCommitment: types.Commitment(8)})
	require.ErrorIs(t, err, types.ErrUnsupportedCommitment)

	require.Zero(t, backend.StatusCalls.Load())
	require.Zero(t, backend.HeightCalls.Load())
	require.Zero(t, backend.BlockhashCalls.Load())
	require.Zero(t, backend.SubmitCalls.Load())
}

func TestServerDelegates(t *testing.T) {
	boom := errors.New("node behind")
	backend := &confirmtest.MockConnection{
		GetSignatureStatusFn: func(context.Context, types.Signature) (*types.SignatureStatus, error) {
			return confirmtest.Rooted(), nil
		},
		GetBlockHeightFn: func(context.Context, types.Commitment) (types.Height, error) {
			return 0, boom
		},
	}
	s := New(backend, nil)
	ctx := context.Background()

	status, err := s.GetSignatureStatus(ctx, "sig")
	require.NoError(t, err)
	require.Equal(t, types.CommitmentFinalized, status.ConfirmationStatus)

	_, err = s.GetBlockHeight(ctx, types.CommitmentConfirmed)
	require.ErrorIs(t, err, boom)
	require.False(t, isPermanent(err), "backend failures keep their classification")

	bh, err := s.GetLatestBlockhash(ctx, types.CommitmentFinalized)
	require.NoError(t, err)
	require.Equal(t, confirmtest.DefaultBlockhash, bh)

	sig, err := s.SubmitRawTransaction(ctx, []byte("signed"), types.SubmitOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, sig)
	require.Equal(t, [][]byte{[]byte("signed")}, backend.Submitted())
}
