package confirmgrpc

import (
	"context"
	"errors"
	"net"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/server"
	"github.com/fardream/confirm-solana-transaction/types"
)

// Compile-time interface check.
var _ LedgerServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a connection as the relay service.
type GRPCServer struct {
	srv *server.Server
}

// NewGRPCServer creates a gRPC server relaying to backend.
func NewGRPCServer(backend confirm.Connection, log *zap.Logger) *GRPCServer {
	return &GRPCServer{srv: server.New(backend, log)}
}

// Register adds the relay service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterLedgerServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

// Server returns the underlying validating wrapper.
func (s *GRPCServer) Server() *server.Server {
	return s.srv
}

func (s *GRPCServer) GetSignatureStatus(ctx context.Context, req *GetSignatureStatusRequest) (*GetSignatureStatusResponse, error) {
	st, err := s.srv.GetSignatureStatus(ctx, req.Signature)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetSignatureStatusResponse{Status: types.NewStatusRecord(st)}, nil
}

func (s *GRPCServer) GetBlockHeight(ctx context.Context, req *GetBlockHeightRequest) (*GetBlockHeightResponse, error) {
	height, err := s.srv.GetBlockHeight(ctx, req.Commitment)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetBlockHeightResponse{Height: height}, nil
}

func (s *GRPCServer) GetLatestBlockhash(ctx context.Context, req *GetLatestBlockhashRequest) (*types.BlockhashWithExpiry, error) {
	bh, err := s.srv.GetLatestBlockhash(ctx, req.Commitment)
	if err != nil {
		return nil, toStatus(err)
	}
	return &bh, nil
}

func (s *GRPCServer) SubmitRawTransaction(ctx context.Context, req *SubmitRawTransactionRequest) (*SubmitRawTransactionResponse, error) {
	sig, err := s.srv.SubmitRawTransaction(ctx, req.Raw, req.Options.Options())
	if err != nil {
		return nil, toStatus(err)
	}
	return &SubmitRawTransactionResponse{Signature: sig}, nil
}

// toStatus maps backend errors onto codes the client can classify.
func toStatus(err error) error {
	var perm *backoff.PermanentError
	switch {
	case errors.Is(err, types.ErrUnsupportedCommitment):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &perm):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Unavailable, err.Error())
}
