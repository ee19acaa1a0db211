package confirmgrpc

import (
	"context"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// Compile-time interface check.
var _ confirm.Connection = (*Client)(nil)

// Client implements confirm.Connection against a remote relay.
type Client struct {
	cc *grpc.ClientConn
}

// Dial creates a client for the relay at addr. The connection is
// established lazily on first use.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "confirm relay: dial %s", addr)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) GetSignatureStatus(ctx context.Context, sig types.Signature) (*types.SignatureStatus, error) {
	req := &GetSignatureStatusRequest{Signature: sig}
	resp := new(GetSignatureStatusResponse)
	if err := c.cc.Invoke(ctx, fullMethod("GetSignatureStatus"), req, resp); err != nil {
		return nil, classify(err)
	}
	return resp.Status.Status(), nil
}

func (c *Client) GetBlockHeight(ctx context.Context, commitment types.Commitment) (types.Height, error) {
	req := &GetBlockHeightRequest{Commitment: commitment}
	resp := new(GetBlockHeightResponse)
	if err := c.cc.Invoke(ctx, fullMethod("GetBlockHeight"), req, resp); err != nil {
		return 0, classify(err)
	}
	return resp.Height, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context, commitment types.Commitment) (types.BlockhashWithExpiry, error) {
	req := &GetLatestBlockhashRequest{Commitment: commitment}
	resp := new(types.BlockhashWithExpiry)
	if err := c.cc.Invoke(ctx, fullMethod("GetLatestBlockhash"), req, resp); err != nil {
		return types.BlockhashWithExpiry{}, classify(err)
	}
	return *resp, nil
}

func (c *Client) SubmitRawTransaction(ctx context.Context, raw []byte, opts types.SubmitOptions) (types.Signature, error) {
	req := &SubmitRawTransactionRequest{Raw: raw, Options: types.NewSubmitRecord(opts)}
	resp := new(SubmitRawTransactionResponse)
	if err := c.cc.Invoke(ctx, fullMethod("SubmitRawTransaction"), req, resp); err != nil {
		return "", classify(err)
	}
	return resp.Signature, nil
}

// classify marks failures that no retry can fix as permanent. Anything
// else, including an unreachable relay, stays transient.
func classify(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return backoff.Permanent(errors.Wrapf(types.ErrUnsupportedCommitment, "relay rejected request: %s", st.Message()))
	case codes.NotFound, codes.Unimplemented, codes.PermissionDenied,
		codes.Unauthenticated, codes.FailedPrecondition:
		return backoff.Permanent(err)
	}
	return err
}
