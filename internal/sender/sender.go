// Package sender implements the batch sender (C6): a narrow Sink interface
// with Stdout, Socket, and Broker variants, plus a Runner that drains the
// scheduler's result channel and feeds a sink. Prefer a narrow interface
// over a deep class hierarchy, per spec's sink-polymorphism guidance.
package sender

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alexandrebrg/isok/internal/job"
)

// Sink accepts one probe result at a time. Implementations decide their own
// batching/flush policy internally.
type Sink interface {
	Send(r job.Result) error
}

// Backoffer is optionally implemented by a Sink to request that the Runner
// pause pulling from the result channel for the returned duration. Used by
// BrokerSink to shed load onto the channel's backlog when the broker is
// visibly unhealthy, rather than retrying into a known-bad endpoint.
type Backoffer interface {
	CourtesyBackoff() time.Duration
}

// HealthChecker is optionally implemented by a Sink that has its own
// upstream liveness signal — BrokerSink invokes the broker's health RPC.
// The agent's /healthz handler uses this to reflect broker reachability
// rather than just "process is up".
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Runner drains a result channel into a Sink until ctx is cancelled or the
// channel is closed.
type Runner struct {
	sink    Sink
	results <-chan job.Result
	logger  *zap.Logger
}

// NewRunner builds a Runner over sink, consuming from results.
func NewRunner(sink Sink, results <-chan job.Result, logger *zap.Logger) *Runner {
	return &Runner{sink: sink, results: results, logger: logger.Named("sender")}
}

// Run blocks until ctx is done or the result channel closes.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-r.results:
			if !ok {
				return
			}
			if err := r.sink.Send(res); err != nil {
				r.logger.Error("sink send failed", zap.Error(err))
				r.pauseIfUnhealthy(ctx)
			}
		}
	}
}

func (r *Runner) pauseIfUnhealthy(ctx context.Context) {
	bo, ok := r.sink.(Backoffer)
	if !ok {
		return
	}
	d := bo.CourtesyBackoff()
	if d <= 0 {
		return
	}
	r.logger.Warn("broker sink unhealthy, pausing result consumption", zap.Duration("pause", d))
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
