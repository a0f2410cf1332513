package sender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/obs"
	"github.com/alexandrebrg/isok/internal/rpcproto"
	"github.com/alexandrebrg/isok/internal/wire"
)

// ErrInvalidBrokerEndpoint wraps a failure constructing the gRPC connection
// to main_broker.
var ErrInvalidBrokerEndpoint = errors.New("sender: invalid broker endpoint")

// ErrUnableToSendBatch is returned once all flush retries are exhausted.
var ErrUnableToSendBatch = errors.New("sender: unable to send batch")

// ErrBrokerUnhealthy is returned by Health when the broker's health RPC
// fails or reports itself unhealthy.
var ErrBrokerUnhealthy = errors.New("sender: broker unhealthy")

const (
	flushRetries       = 3
	flushRetryDelay    = 2 * time.Second
	flushCallTimeout   = 5 * time.Second
	healthCallTimeout  = 5 * time.Second
	unhealthyThreshold = 3
)

// BrokerSinkConfig configures a BrokerSink. FallbackBrokers is accepted and
// stored but never dialed by this core — see DESIGN.md Open Questions.
type BrokerSinkConfig struct {
	MainBroker      string
	FallbackBrokers []string
	AgentID         string
	Zone            string
	Region          string
	Batch           int
	BatchInterval   time.Duration
}

// BrokerSink batches results and flushes them over gRPC to a broker.
type BrokerSink struct {
	conn   *grpc.ClientConn
	client rpcproto.BrokerServiceClient

	tags          wire.Tags
	batchSize     int
	batchInterval time.Duration

	mu                  sync.Mutex
	backlog             []wire.CheckResult
	lastFlush           time.Time
	consecutiveFailures int

	fallbackBrokers []string
	clock           job.Clock
	metrics         *obs.AgentMetrics
	logger          *zap.Logger
}

// NewBrokerSink dials cfg.MainBroker and builds a BrokerSink. batch<1 is
// coerced to 1 with a warning, per spec.
func NewBrokerSink(cfg BrokerSinkConfig, metrics *obs.AgentMetrics, logger *zap.Logger, clock job.Clock) (*BrokerSink, error) {
	conn, err := grpc.NewClient(cfg.MainBroker, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBrokerEndpoint, err)
	}

	logger = logger.Named("sender.broker")
	batch := cfg.Batch
	if batch < 1 {
		logger.Warn("batch coerced to 1", zap.Int("configured", cfg.Batch))
		batch = 1
	}

	batchInterval := cfg.BatchInterval
	if batchInterval <= 0 {
		logger.Warn("batch_interval <= 0, flushing after every event", zap.Duration("configured", cfg.BatchInterval))
		batchInterval = 0
	}

	return &BrokerSink{
		conn:            conn,
		client:          rpcproto.NewBrokerServiceClient(conn),
		tags:            wire.Tags{AgentID: cfg.AgentID, Zone: cfg.Zone, Region: cfg.Region},
		batchSize:       batch,
		batchInterval:   batchInterval,
		lastFlush:       clock.Now(),
		fallbackBrokers: cfg.FallbackBrokers,
		clock:           clock,
		metrics:         metrics,
		logger:          logger,
	}, nil
}

func (b *BrokerSink) Send(r job.Result) error {
	b.mu.Lock()
	b.backlog = append(b.backlog, r.ToWire())
	now := b.clock.Now()
	shouldFlush := len(b.backlog) >= b.batchSize || b.batchInterval == 0 || now.Sub(b.lastFlush) > b.batchInterval

	var toFlush []wire.CheckResult
	if shouldFlush {
		toFlush = b.backlog
		b.backlog = nil
	}
	b.mu.Unlock()

	if toFlush == nil {
		return nil
	}
	return b.flush(toFlush)
}

// flush sends events, retrying up to flushRetries times with a fixed
// flushRetryDelay, re-sending the same event set each attempt.
func (b *BrokerSink) flush(events []wire.CheckResult) error {
	start := time.Now()
	req := &wire.CheckBatchRequest{Tags: b.tags, Events: events}

	var lastErr error
	for attempt := 0; attempt < flushRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), flushCallTimeout)
		resp, err := b.client.BatchSend(ctx, req)
		cancel()

		if err == nil && resp.Error == "" {
			b.mu.Lock()
			b.lastFlush = b.clock.Now()
			b.consecutiveFailures = 0
			b.mu.Unlock()
			if b.metrics != nil {
				b.metrics.BatchesSentTotal.WithLabelValues("ok").Inc()
				b.metrics.BatchFlushLatencySecs.Observe(time.Since(start).Seconds())
			}
			return nil
		}
		if err == nil {
			err = errors.New(resp.Error)
		}
		lastErr = err
		b.logger.Warn("flush attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("events", len(events)),
			zap.Error(err))

		if attempt < flushRetries-1 {
			time.Sleep(flushRetryDelay)
		}
	}

	b.mu.Lock()
	b.consecutiveFailures++
	b.mu.Unlock()
	if b.metrics != nil {
		b.metrics.BatchesSentTotal.WithLabelValues("dropped").Inc()
	}
	return fmt.Errorf("%w: %v", ErrUnableToSendBatch, lastErr)
}

// Health invokes the broker's health RPC. RPC failure or a healthy=false
// response both surface as ErrBrokerUnhealthy.
func (b *BrokerSink) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCallTimeout)
	defer cancel()

	resp, err := b.client.Health(ctx, &wire.HealthRequest{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnhealthy, err)
	}
	if !resp.Healthy {
		return ErrBrokerUnhealthy
	}
	return nil
}

// CourtesyBackoff implements Backoffer: after unhealthyThreshold consecutive
// flush failures, the Runner pauses draining the result channel for one
// batch_interval rather than hammering a known-bad broker.
func (b *BrokerSink) CourtesyBackoff() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consecutiveFailures >= unhealthyThreshold {
		return b.batchInterval
	}
	return 0
}

// Close closes the underlying gRPC connection.
func (b *BrokerSink) Close() error {
	return b.conn.Close()
}
