package confirmgrpc

import "github.com/fardream/confirm-solana-transaction/types"

// Wrapper types for the relay's RPC methods. Used only at the gRPC
// serialization boundary.

// GetSignatureStatusRequest asks for the status of one signature.
type GetSignatureStatusRequest struct {
	Signature types.Signature `cramberry:"1"`
}

// GetSignatureStatusResponse carries a record with Found unset when the
// network reports nothing for the signature.
type GetSignatureStatusResponse struct {
	Status types.StatusRecord `cramberry:"1"`
}

// GetBlockHeightRequest asks for the height at a commitment level.
type GetBlockHeightRequest struct {
	Commitment types.Commitment `cramberry:"1"`
}

// GetBlockHeightResponse wraps the returned height.
type GetBlockHeightResponse struct {
	Height types.Height `cramberry:"1"`
}

// GetLatestBlockhashRequest asks for a fresh blockhash at a commitment level.
type GetLatestBlockhashRequest struct {
	Commitment types.Commitment `cramberry:"1"`
}

// SubmitRawTransactionRequest carries a signed, serialized transaction.
type SubmitRawTransactionRequest struct {
	Raw     []byte             `cramberry:"1"`
	Options types.SubmitRecord `cramberry:"2"`
}

// SubmitRawTransactionResponse wraps the signature the network assigned.
type SubmitRawTransactionResponse struct {
	Signature types.Signature `cramberry:"1"`
}
