package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryServerInterceptorRejectsOverBurst(t *testing.T) {
	var limited int
	l := New(1, 1, func() { limited++ })

	info := &grpc.UnaryServerInfo{FullMethod: "/isok.broker.rpc.BrokerService/BatchSend"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	interceptor := l.UnaryServerInterceptor(info.FullMethod)

	_, err := interceptor(context.Background(), nil, info, handler)
	require.NoError(t, err)

	_, err = interceptor(context.Background(), nil, info, handler)
	require.Error(t, err)
	require.Equal(t, codes.ResourceExhausted, status.Code(err))
	require.Equal(t, 1, limited)
}

func TestUnaryServerInterceptorIgnoresOtherMethods(t *testing.T) {
	l := New(0, 0, nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/isok.broker.rpc.BrokerService/Health"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) { return "ok", nil }
	interceptor := l.UnaryServerInterceptor("/isok.broker.rpc.BrokerService/BatchSend")

	_, err := interceptor(context.Background(), nil, info, handler)
	require.NoError(t, err)
}
