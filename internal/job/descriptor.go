// Package job defines the immutable check descriptor, its mutable
// scheduling state, and the in-process result shape produced by running a
// probe — the C2/C3 components of the pipeline.
package job

import (
	"fmt"
	"time"

	"github.com/alexandrebrg/isok/internal/wire"
)

// Kind selects which probe executor runs a Job.
type Kind string

const (
	KindHTTP Kind = "http"
	KindTCP  Kind = "tcp"
)

// HTTPParams configures an HTTP probe.
type HTTPParams struct {
	Endpoint string
	Headers  map[string]string
}

// TCPParams configures a TCP probe.
type TCPParams struct {
	Endpoint string
}

// Descriptor is an immutable check definition: identity, cadence, probe
// kind and its parameters, and a display name. Once constructed it is never
// mutated; the scheduler carries it by value alongside the mutable state in
// jobEntry.
type Descriptor struct {
	ID         wire.JobId
	Interval   time.Duration
	PrettyName string
	Kind       Kind
	HTTP       HTTPParams
	TCP        TCPParams
}

// MinInterval is the shortest permitted cadence for any job.
const MinInterval = time.Second

// Validate checks the descriptor's own invariants (does not reach into the
// network — header validity is checked when the HTTP probe executor is
// built by probe.New, since it depends on Go's http.Header semantics).
func (d Descriptor) Validate() error {
	if d.PrettyName == "" {
		return fmt.Errorf("job: pretty_name must not be empty")
	}
	if d.Interval < MinInterval {
		return fmt.Errorf("job: interval must be >= %s, got %s", MinInterval, d.Interval)
	}
	switch d.Kind {
	case KindHTTP:
		if d.HTTP.Endpoint == "" {
			return fmt.Errorf("job: http endpoint must not be empty")
		}
	case KindTCP:
		if d.TCP.Endpoint == "" {
			return fmt.Errorf("job: tcp endpoint must not be empty")
		}
	default:
		return fmt.Errorf("job: unknown kind %q", d.Kind)
	}
	return nil
}
