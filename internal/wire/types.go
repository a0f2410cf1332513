package wire

import "time"

// Status is the wire-stable outcome of a single probe attempt.
//
//	CheckBatchRequest    { 1: Tags tags; 2: repeated CheckResult events; 3: Timestamp created_at; }
//	CheckBatchResponse   { 1: optional string error; }
//	HealthRequest        {}
//	HealthResponse       { 1: bool healthy; }
//	Tags                 { 1: string agent_id; 2: string zone; 3: string region; }
//	CheckResult          { 1: string id_ulid; 2: Timestamp run_at; 3: int32 status;
//	                       4: CheckJobMetrics metrics; 5: Tags tags; 6: oneof details; }
//	CheckJobMetrics      { 1: optional uint64 latency; }  // milliseconds
type Status int32

const (
	StatusUnknown     Status = 0
	StatusReachable   Status = 1
	StatusUnreachable Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusReachable:
		return "reachable"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Tags identifies the emitting agent: (agent_id, zone, region).
type Tags struct {
	AgentID string
	Zone    string
	Region  string
}

// CheckJobMetrics carries probe measurements. LatencyMS is present only
// when Status == StatusReachable.
type CheckJobMetrics struct {
	LatencyMS      uint64
	LatencyPresent bool
}

// CheckResult is a single probe outcome, ready for transport.
type CheckResult struct {
	IDULID    string
	RunAt     time.Time
	RunAtSet  bool
	Status    Status
	Metrics   CheckJobMetrics
	Tags      *Tags
	Details   []byte // reserved oneof extension, opaque to the core
}

// CheckBatchRequest groups one or more CheckResult records under a single
// set of agent tags.
type CheckBatchRequest struct {
	Tags         Tags
	Events       []CheckResult
	CreatedAt    time.Time
	CreatedAtSet bool
}

// CheckBatchResponse reports success (Error == "") or failure.
type CheckBatchResponse struct {
	Error string
}

// HealthRequest carries no fields.
type HealthRequest struct{}

// HealthResponse reports broker liveness.
type HealthResponse struct {
	Healthy bool
}
