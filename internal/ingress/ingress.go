// Package ingress implements the broker's gRPC surface (C7): batch_send and
// health. Grounded on isok-broker/src/api.rs's BrokerGrpcService — tag
// validation, per-event tag stamping, and the sequential non-transactional
// publish loop are carried over unchanged; structured logging follows the
// teacher's server/internal/grpc/server.go zap-field-per-RPC convention.
package ingress

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alexandrebrg/isok/internal/obs"
	"github.com/alexandrebrg/isok/internal/rpcproto"
	"github.com/alexandrebrg/isok/internal/wire"
)

// EventPublisher is the narrow interface the durable-log publisher (C8)
// must satisfy; defined here rather than imported concretely so the
// service can be tested against a fake.
type EventPublisher interface {
	Publish(ctx context.Context, event wire.CheckResult) error
}

// Service implements rpcproto.BrokerServiceServer.
type Service struct {
	rpcproto.UnimplementedBrokerServiceServer

	publisher EventPublisher
	logger    *zap.Logger
	metrics   *obs.BrokerMetrics
}

// New builds the broker RPC service. metrics may be nil in tests.
func New(publisher EventPublisher, logger *zap.Logger, metrics *obs.BrokerMetrics) *Service {
	return &Service{
		publisher: publisher,
		logger:    logger.Named("ingress"),
		metrics:   metrics,
	}
}

func (s *Service) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.BatchSendTotal.WithLabelValues(outcome).Inc()
	}
}

// BatchSend validates the batch's tags, stamps every event from them, and
// publishes events to the durable log in order. The batch is not
// transactional: the first publish failure aborts the remaining events and
// returns Internal, leaving earlier events already durably published. Agent
// retries may therefore duplicate events; id_ulid is the dedup key for
// downstream consumers.
func (s *Service) BatchSend(ctx context.Context, req *wire.CheckBatchRequest) (*wire.CheckBatchResponse, error) {
	requestID := uuid.NewString()

	if req.Tags.AgentID == "" {
		s.countOutcome("invalid_argument")
		return nil, status.Error(codes.InvalidArgument, "missing tags")
	}

	s.logger.Debug("batch_send",
		zap.String("request_id", requestID),
		zap.String("agent_id", req.Tags.AgentID),
		zap.String("zone", req.Tags.Zone),
		zap.String("region", req.Tags.Region),
		zap.Int("batch_len", len(req.Events)))

	tags := req.Tags
	for i := range req.Events {
		req.Events[i].Tags = &tags
		if err := s.publisher.Publish(ctx, req.Events[i]); err != nil {
			s.logger.Error("publish failed, aborting remaining batch",
				zap.String("request_id", requestID),
				zap.String("id_ulid", req.Events[i].IDULID),
				zap.Error(err))
			s.countOutcome("publish_error")
			return nil, status.Error(codes.Internal, err.Error())
		}
		if s.metrics != nil {
			s.metrics.EventsPublished.Inc()
		}
	}

	s.countOutcome("ok")
	return &wire.CheckBatchResponse{}, nil
}

// Health always reports liveness; the broker has no deeper readiness notion
// in this core (no DB connection pool, no auth provider to probe).
func (s *Service) Health(_ context.Context, _ *wire.HealthRequest) (*wire.HealthResponse, error) {
	return &wire.HealthResponse{Healthy: true}, nil
}
