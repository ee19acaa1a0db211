// Package confirmgrpc relays a ledger connection over gRPC, using
// cramberry for deterministic binary serialization.
//
// No protobuf code generation is required. Request and response types
// are serialized directly via cramberry struct tags.
package confirmgrpc

import (
	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/pkg/errors"
	"google.golang.org/grpc/encoding"
)

const codecName = "cramberry"

// CramberryCodec implements grpc/encoding.Codec using cramberry.
type CramberryCodec struct{}

func (CramberryCodec) Marshal(v any) ([]byte, error) {
	data, err := cramberry.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "cramberry marshal")
	}
	return data, nil
}

func (CramberryCodec) Unmarshal(data []byte, v any) error {
	return errors.Wrap(cramberry.Unmarshal(data, v), "cramberry unmarshal")
}

func (CramberryCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(CramberryCodec{})
}
