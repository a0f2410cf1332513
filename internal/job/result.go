package job

import (
	"time"

	"github.com/alexandrebrg/isok/internal/wire"
)

// Result is a single probe outcome, produced by internal/probe and
// consumed by internal/sender. Latency is set only when Status is
// StatusReachable — probe executors must preserve that invariant.
type Result struct {
	ID      wire.JobId
	RunAt   time.Time
	Status  wire.Status
	Latency time.Duration
}

// ToWire converts a Result into the transport representation. Per-event
// Tags are left nil — a Result has no notion of agent identity; the sender
// attaches tags to the batch and the broker's ingress stamps them onto each
// event.
func (r Result) ToWire() wire.CheckResult {
	cr := wire.CheckResult{
		IDULID:   r.ID.String(),
		RunAt:    r.RunAt,
		RunAtSet: !r.RunAt.IsZero(),
		Status:   r.Status,
	}
	if r.Status == wire.StatusReachable {
		cr.Metrics = wire.CheckJobMetrics{
			LatencyMS:      uint64(r.Latency.Milliseconds()),
			LatencyPresent: true,
		}
	}
	return cr
}
