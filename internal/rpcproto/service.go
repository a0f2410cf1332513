package rpcproto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alexandrebrg/isok/internal/wire"
)

const (
	serviceName                            = "isok.broker.rpc.BrokerService"
	BrokerService_BatchSend_FullMethodName = "/" + serviceName + "/BatchSend"
	BrokerService_Health_FullMethodName    = "/" + serviceName + "/Health"
)

// BrokerServiceClient is the agent-side view of the broker RPC surface:
// batch_send delivers a batch of check results, health is a liveness probe.
type BrokerServiceClient interface {
	BatchSend(ctx context.Context, in *wire.CheckBatchRequest, opts ...grpc.CallOption) (*wire.CheckBatchResponse, error)
	Health(ctx context.Context, in *wire.HealthRequest, opts ...grpc.CallOption) (*wire.HealthResponse, error)
}

type brokerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBrokerServiceClient wraps an established *grpc.ClientConn (or any
// grpc.ClientConnInterface) as a BrokerServiceClient.
func NewBrokerServiceClient(cc grpc.ClientConnInterface) BrokerServiceClient {
	return &brokerServiceClient{cc: cc}
}

func (c *brokerServiceClient) BatchSend(ctx context.Context, in *wire.CheckBatchRequest, opts ...grpc.CallOption) (*wire.CheckBatchResponse, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	out := new(wire.CheckBatchResponse)
	if err := c.cc.Invoke(ctx, BrokerService_BatchSend_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *brokerServiceClient) Health(ctx context.Context, in *wire.HealthRequest, opts ...grpc.CallOption) (*wire.HealthResponse, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	out := new(wire.HealthResponse)
	if err := c.cc.Invoke(ctx, BrokerService_Health_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// BrokerServiceServer is the broker-side implementation contract.
type BrokerServiceServer interface {
	BatchSend(context.Context, *wire.CheckBatchRequest) (*wire.CheckBatchResponse, error)
	Health(context.Context, *wire.HealthRequest) (*wire.HealthResponse, error)
	mustEmbedUnimplementedBrokerServiceServer()
}

// UnimplementedBrokerServiceServer must be embedded in every concrete
// BrokerServiceServer to get forward-compatible method additions for free.
type UnimplementedBrokerServiceServer struct{}

func (UnimplementedBrokerServiceServer) BatchSend(context.Context, *wire.CheckBatchRequest) (*wire.CheckBatchResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method BatchSend not implemented")
}

func (UnimplementedBrokerServiceServer) Health(context.Context, *wire.HealthRequest) (*wire.HealthResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Health not implemented")
}

func (UnimplementedBrokerServiceServer) mustEmbedUnimplementedBrokerServiceServer() {}

// RegisterBrokerServiceServer mounts srv onto s under the BrokerService
// name, mirroring what protoc-gen-go-grpc would have generated.
func RegisterBrokerServiceServer(s grpc.ServiceRegistrar, srv BrokerServiceServer) {
	s.RegisterService(&BrokerService_ServiceDesc, srv)
}

func _BrokerService_BatchSend_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.CheckBatchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrokerServiceServer).BatchSend(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: BrokerService_BatchSend_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BrokerServiceServer).BatchSend(ctx, req.(*wire.CheckBatchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _BrokerService_Health_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wire.HealthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BrokerServiceServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: BrokerService_Health_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BrokerServiceServer).Health(ctx, req.(*wire.HealthRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// BrokerService_ServiceDesc is the grpc.ServiceDesc a hand-written
// equivalent of protoc-gen-go-grpc's generated descriptor for BrokerService.
var BrokerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BrokerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BatchSend", Handler: _BrokerService_BatchSend_Handler},
		{MethodName: "Health", Handler: _BrokerService_Health_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "isok/broker/rpc.proto",
}
