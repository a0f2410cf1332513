package sender

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/rpcproto"
	"github.com/alexandrebrg/isok/internal/wire"
)

type countingBroker struct {
	rpcproto.UnimplementedBrokerServiceServer
	mu        sync.Mutex
	calls     int
	failFirst int
	gotEvents int
}

func (c *countingBroker) BatchSend(_ context.Context, req *wire.CheckBatchRequest) (*wire.CheckBatchResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= c.failFirst {
		return nil, status.Error(codes.Unavailable, "simulated broker outage")
	}
	c.gotEvents = len(req.Events)
	return &wire.CheckBatchResponse{}, nil
}

type healthBroker struct {
	rpcproto.UnimplementedBrokerServiceServer
	healthy bool
}

func (h *healthBroker) Health(_ context.Context, _ *wire.HealthRequest) (*wire.HealthResponse, error) {
	return &wire.HealthResponse{Healthy: h.healthy}, nil
}

func dialTestBroker(t *testing.T, srv rpcproto.BrokerServiceServer) (*grpc.ClientConn, func()) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer()
	rpcproto.RegisterBrokerServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	return conn, func() { _ = conn.Close(); s.Stop() }
}

func newSinkOverConn(t *testing.T, conn *grpc.ClientConn, batch int, interval time.Duration, clock job.Clock) *BrokerSink {
	t.Helper()
	return &BrokerSink{
		conn:          conn,
		client:        rpcproto.NewBrokerServiceClient(conn),
		tags:          wire.Tags{AgentID: "agent-1", Zone: "dev", Region: "localhost"},
		batchSize:     batch,
		batchInterval: interval,
		lastFlush:     clock.Now(),
		clock:         clock,
		logger:        zap.NewNop(),
	}
}

func TestBrokerSinkFlushesOnBatchSize(t *testing.T) {
	broker := &countingBroker{}
	conn, cleanup := dialTestBroker(t, broker)
	defer cleanup()

	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink := newSinkOverConn(t, conn, 3, time.Minute, clock)

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Send(job.Result{ID: wire.NewJobId(), Status: wire.StatusReachable, Latency: time.Millisecond}))
	}

	broker.mu.Lock()
	defer broker.mu.Unlock()
	require.Equal(t, 1, broker.calls)
	require.Equal(t, 3, broker.gotEvents)
}

func TestBrokerSinkRetriesThenSucceeds(t *testing.T) {
	broker := &countingBroker{failFirst: 1}
	conn, cleanup := dialTestBroker(t, broker)
	defer cleanup()

	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink := newSinkOverConn(t, conn, 1, time.Minute, clock)
	// a batch of 1 makes the single Send flush at once; the retry after the
	// first failure still waits the fixed flushRetryDelay
	sink.batchSize = 1

	err := sink.Send(job.Result{ID: wire.NewJobId(), Status: wire.StatusUnreachable})
	require.NoError(t, err)

	broker.mu.Lock()
	defer broker.mu.Unlock()
	require.Equal(t, 2, broker.calls)
}

func TestBrokerSinkDropsBatchAfterExhaustingRetries(t *testing.T) {
	broker := &countingBroker{failFirst: 99}
	conn, cleanup := dialTestBroker(t, broker)
	defer cleanup()

	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink := newSinkOverConn(t, conn, 1, time.Minute, clock)

	// The courtesy backoff only kicks in after unhealthyThreshold batches
	// in a row have been dropped.
	for i := 0; i < unhealthyThreshold; i++ {
		err := sink.Send(job.Result{ID: wire.NewJobId(), Status: wire.StatusUnreachable})
		require.ErrorIs(t, err, ErrUnableToSendBatch)
	}
	require.Greater(t, sink.CourtesyBackoff(), time.Duration(0))
}

func TestBrokerSinkCoercesZeroBatchToOne(t *testing.T) {
	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink, err := NewBrokerSink(BrokerSinkConfig{MainBroker: "passthrough:///unused", Batch: 0, BatchInterval: time.Minute}, nil, zap.NewNop(), clock)
	require.NoError(t, err)
	require.Equal(t, 1, sink.batchSize)
}

func TestBrokerSinkFlushesImmediatelyWhenBatchIntervalZero(t *testing.T) {
	broker := &countingBroker{}
	conn, cleanup := dialTestBroker(t, broker)
	defer cleanup()

	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink := newSinkOverConn(t, conn, 100, 0, clock)

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Send(job.Result{ID: wire.NewJobId(), Status: wire.StatusReachable, Latency: time.Millisecond}))
		require.Len(t, sink.backlog, 0)
	}

	broker.mu.Lock()
	defer broker.mu.Unlock()
	require.Equal(t, 3, broker.calls)
}

func TestBrokerSinkCoercesNegativeBatchIntervalToZero(t *testing.T) {
	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink, err := NewBrokerSink(BrokerSinkConfig{MainBroker: "passthrough:///unused", Batch: 1, BatchInterval: -time.Second}, nil, zap.NewNop(), clock)
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), sink.batchInterval)
}

func TestBrokerSinkHealthReturnsNilWhenHealthy(t *testing.T) {
	conn, cleanup := dialTestBroker(t, &healthBroker{healthy: true})
	defer cleanup()

	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink := newSinkOverConn(t, conn, 1, time.Minute, clock)
	require.NoError(t, sink.Health(context.Background()))
}

func TestBrokerSinkHealthReturnsErrBrokerUnhealthyWhenReportedUnhealthy(t *testing.T) {
	conn, cleanup := dialTestBroker(t, &healthBroker{healthy: false})
	defer cleanup()

	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink := newSinkOverConn(t, conn, 1, time.Minute, clock)
	require.ErrorIs(t, sink.Health(context.Background()), ErrBrokerUnhealthy)
}

func TestBrokerSinkHealthReturnsErrBrokerUnhealthyOnRPCFailure(t *testing.T) {
	conn, cleanup := dialTestBroker(t, &countingBroker{})
	defer cleanup()

	clock := job.NewFakeClock(time.Unix(1000, 0))
	sink := newSinkOverConn(t, conn, 1, time.Minute, clock)
	require.ErrorIs(t, sink.Health(context.Background()), ErrBrokerUnhealthy)
}
