package rpcproto

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/alexandrebrg/isok/internal/wire"
)

type fakeBrokerServer struct {
	UnimplementedBrokerServiceServer
	gotTags wire.Tags
	gotN    int
}

func (f *fakeBrokerServer) BatchSend(_ context.Context, req *wire.CheckBatchRequest) (*wire.CheckBatchResponse, error) {
	f.gotTags = req.Tags
	f.gotN = len(req.Events)
	return &wire.CheckBatchResponse{}, nil
}

func (f *fakeBrokerServer) Health(_ context.Context, _ *wire.HealthRequest) (*wire.HealthResponse, error) {
	return &wire.HealthResponse{Healthy: true}, nil
}

func dialFakeServer(t *testing.T, srv BrokerServiceServer) (BrokerServiceClient, func()) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)

	s := grpc.NewServer()
	RegisterBrokerServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	cleanup := func() {
		_ = conn.Close()
		s.Stop()
	}
	return NewBrokerServiceClient(conn), cleanup
}

func TestBatchSendOverWireCodec(t *testing.T) {
	fake := &fakeBrokerServer{}
	client, cleanup := dialFakeServer(t, fake)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.BatchSend(ctx, &wire.CheckBatchRequest{
		Tags: wire.Tags{AgentID: "agent-1", Zone: "dev", Region: "localhost"},
		Events: []wire.CheckResult{
			{IDULID: wire.NewJobId().String(), Status: wire.StatusReachable},
		},
	})
	require.NoError(t, err)
	require.Empty(t, resp.Error)
	require.Equal(t, "agent-1", fake.gotTags.AgentID)
	require.Equal(t, 1, fake.gotN)
}

func TestHealthOverWireCodec(t *testing.T) {
	fake := &fakeBrokerServer{}
	client, cleanup := dialFakeServer(t, fake)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Health(ctx, &wire.HealthRequest{})
	require.NoError(t, err)
	require.True(t, resp.Healthy)
}
