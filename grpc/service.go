package confirmgrpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/fardream/confirm-solana-transaction/types"
)

const serviceName = "confirm.v1.LedgerService"

// LedgerServiceServer is the server-side interface for the relay service.
type LedgerServiceServer interface {
	GetSignatureStatus(context.Context, *GetSignatureStatusRequest) (*GetSignatureStatusResponse, error)
	GetBlockHeight(context.Context, *GetBlockHeightRequest) (*GetBlockHeightResponse, error)
	GetLatestBlockhash(context.Context, *GetLatestBlockhashRequest) (*types.BlockhashWithExpiry, error)
	SubmitRawTransaction(context.Context, *SubmitRawTransactionRequest) (*SubmitRawTransactionResponse, error)
}

// RegisterLedgerServiceServer registers srv on a gRPC server.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

func handlerGetSignatureStatus(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetSignatureStatusRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetSignatureStatus(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetSignatureStatus")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).GetSignatureStatus(ctx, req.(*GetSignatureStatusRequest))
	})
}

func handlerGetBlockHeight(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetBlockHeightRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetBlockHeight(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetBlockHeight")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).GetBlockHeight(ctx, req.(*GetBlockHeightRequest))
	})
}

func handlerGetLatestBlockhash(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetLatestBlockhashRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).GetLatestBlockhash(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetLatestBlockhash")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).GetLatestBlockhash(ctx, req.(*GetLatestBlockhashRequest))
	})
}

func handlerSubmitRawTransaction(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(SubmitRawTransactionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LedgerServiceServer).SubmitRawTransaction(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("SubmitRawTransaction")}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(LedgerServiceServer).SubmitRawTransaction(ctx, req.(*SubmitRawTransactionRequest))
	})
}

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSignatureStatus", Handler: handlerGetSignatureStatus},
		{MethodName: "GetBlockHeight", Handler: handlerGetBlockHeight},
		{MethodName: "GetLatestBlockhash", Handler: handlerGetLatestBlockhash},
		{MethodName: "SubmitRawTransaction", Handler: handlerSubmitRawTransaction},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "confirm/v1/ledger.cram",
}
