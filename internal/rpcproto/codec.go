// Package rpcproto wires the check-batch and health RPCs onto
// google.golang.org/grpc without a protoc code-generation step. Message
// types live in internal/wire and already know how to turn themselves into
// protobuf wire format; this package supplies the grpc.ServiceDesc,
// strongly-typed client/server stubs, and a grpc encoding.Codec named
// "wire" that simply delegates to those Marshal/Unmarshal methods.
package rpcproto

import (
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is negotiated via grpc.CallContentSubtype on every client call
// and must match what the codec registers under.
const codecName = "wire"

type wireMarshaler interface {
	Marshal() ([]byte, error)
}

type wireUnmarshaler interface {
	Unmarshal([]byte) error
}

// grpcCodec adapts internal/wire's hand-rolled Marshal/Unmarshal methods to
// grpc's encoding.Codec interface.
type grpcCodec struct{}

func (grpcCodec) Name() string { return codecName }

func (grpcCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(wireMarshaler)
	if !ok {
		return nil, fmt.Errorf("rpcproto: %T does not implement wire marshaling", v)
	}
	return m.Marshal()
}

func (grpcCodec) Unmarshal(data []byte, v interface{}) error {
	m, ok := v.(wireUnmarshaler)
	if !ok {
		return fmt.Errorf("rpcproto: %T does not implement wire unmarshaling", v)
	}
	return m.Unmarshal(data)
}

func init() {
	encoding.RegisterCodec(grpcCodec{})
}
