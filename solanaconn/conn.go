// Package solanaconn adapts a Solana JSON-RPC node to the ledger
// connection used by the confirmation loop.
package solanaconn

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"

	confirm "github.com/fardream/confirm-solana-transaction"
	"github.com/fardream/confirm-solana-transaction/types"
)

// JSON-RPC codes a retry cannot fix.
const (
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Compile-time interface check.
var _ confirm.Connection = (*Connection)(nil)

// Connection talks to one RPC endpoint.
type Connection struct {
	rpc *rpc.Client
	// SearchHistory asks the node to look beyond its recent status cache.
	SearchHistory bool
}

// New creates a connection to endpoint, e.g. rpc.MainNetBeta_RPC.
func New(endpoint string) *Connection {
	return NewFromClient(rpc.New(endpoint))
}

// NewFromClient wraps an existing client.
func NewFromClient(cl *rpc.Client) *Connection {
	return &Connection{rpc: cl}
}

func (c *Connection) Close() error {
	return c.rpc.Close()
}

func (c *Connection) GetSignatureStatus(ctx context.Context, sig types.Signature) (*types.SignatureStatus, error) {
	parsed, err := solana.SignatureFromBase58(string(sig))
	if err != nil {
		return nil, backoff.Permanent(errors.Wrapf(err, "parse signature %q", sig))
	}
	out, err := c.rpc.GetSignatureStatuses(ctx, c.SearchHistory, parsed)
	if err != nil {
		return nil, classify(err, "getSignatureStatuses")
	}
	if out == nil || len(out.Value) == 0 {
		return nil, nil
	}
	return convertStatus(out.Value[0]), nil
}

func (c *Connection) GetBlockHeight(ctx context.Context, commitment types.Commitment) (types.Height, error) {
	ct, err := commitmentType(commitment)
	if err != nil {
		return 0, err
	}
	height, err := c.rpc.GetBlockHeight(ctx, ct)
	if err != nil {
		return 0, classify(err, "getBlockHeight")
	}
	return types.Height(height), nil
}

func (c *Connection) GetLatestBlockhash(ctx context.Context, commitment types.Commitment) (types.BlockhashWithExpiry, error) {
	ct, err := commitmentType(commitment)
	if err != nil {
		return types.BlockhashWithExpiry{}, err
	}
	out, err := c.rpc.GetLatestBlockhash(ctx, ct)
	if err != nil {
		return types.BlockhashWithExpiry{}, classify(err, "getLatestBlockhash")
	}
	if out == nil || out.Value == nil {
		return types.BlockhashWithExpiry{}, errors.New("getLatestBlockhash: empty result")
	}
	return types.BlockhashWithExpiry{
		Blockhash:    types.Blockhash(out.Value.Blockhash.String()),
		ExpiryHeight: types.Height(out.Value.LastValidBlockHeight),
	}, nil
}

func (c *Connection) SubmitRawTransaction(ctx context.Context, raw []byte, opts types.SubmitOptions) (types.Signature, error) {
	txOpts := rpc.TransactionOpts{SkipPreflight: opts.SkipPreflight}
	if opts.PreflightCommitment != types.CommitmentUnspecified {
		ct, err := commitmentType(opts.PreflightCommitment)
		if err != nil {
			return "", err
		}
		txOpts.PreflightCommitment = ct
	}
	if opts.MaxRetries != nil {
		n := uint(*opts.MaxRetries)
		txOpts.MaxRetries = &n
	}
	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, raw, txOpts)
	if err != nil {
		return "", classify(err, "sendTransaction")
	}
	return types.Signature(sig.String()), nil
}

func commitmentType(c types.Commitment) (rpc.CommitmentType, error) {
	switch c {
	case types.CommitmentProcessed:
		return rpc.CommitmentProcessed, nil
	case types.CommitmentConfirmed:
		return rpc.CommitmentConfirmed, nil
	case types.CommitmentFinalized:
		return rpc.CommitmentFinalized, nil
	}
	return "", backoff.Permanent(errors.Wrapf(types.ErrUnsupportedCommitment, "commitment %s", c))
}

func confirmationLevel(s rpc.ConfirmationStatusType) types.Commitment {
	switch s {
	case rpc.ConfirmationStatusProcessed:
		return types.CommitmentProcessed
	case rpc.ConfirmationStatusConfirmed:
		return types.CommitmentConfirmed
	case rpc.ConfirmationStatusFinalized:
		return types.CommitmentFinalized
	}
	return types.CommitmentUnspecified
}

func convertStatus(in *rpc.SignatureStatusesResult) *types.SignatureStatus {
	if in == nil {
		return nil
	}
	out := &types.SignatureStatus{
		Slot:               in.Slot,
		ConfirmationStatus: confirmationLevel(in.ConfirmationStatus),
	}
	if in.Confirmations != nil {
		n := *in.Confirmations
		out.Confirmations = &n
	}
	if in.Err != nil {
		out.Err = describe(in.Err)
	}
	return out
}

// describe renders the node's structured transaction error, e.g.
// {"InstructionError":[0,{"Custom":1}]}.
func describe(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// classify marks request-shape failures as permanent. Everything else,
// including HTTP and node-side errors, is left transient.
func classify(err error, method string) error {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case codeInvalidRequest, codeMethodNotFound, codeInvalidParams:
			return backoff.Permanent(errors.Wrap(err, method))
		}
	}
	return errors.Wrap(err, method)
}
