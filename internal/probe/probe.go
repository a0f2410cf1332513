// Package probe implements the two check executors: HTTP and TCP. Both
// return success even when the remote end is unreachable — unreachability
// is data, not an error. The only error returns are configuration errors:
// one discovered while building the probe (e.g. an invalid HTTP header), or
// an HTTP endpoint from which no request can be built.
package probe

import (
	"context"
	"fmt"

	"github.com/alexandrebrg/isok/internal/job"
)

// InvalidJobConfigError reports a job descriptor that cannot be turned into
// a runnable probe, e.g. an HTTP header with an invalid name or value.
type InvalidJobConfigError struct {
	Reason string
}

func (e *InvalidJobConfigError) Error() string {
	return fmt.Sprintf("probe: invalid job config: %s", e.Reason)
}

// Executor runs a single probe attempt for the job it was built from.
type Executor interface {
	Execute(ctx context.Context) (job.Result, error)
}

// New builds the Executor matching d.Kind. d is assumed already validated
// (job.Descriptor.Validate).
func New(d job.Descriptor) (Executor, error) {
	switch d.Kind {
	case job.KindHTTP:
		return newHTTPExecutor(d)
	case job.KindTCP:
		return &tcpExecutor{descriptor: d}, nil
	default:
		return nil, &InvalidJobConfigError{Reason: fmt.Sprintf("unsupported kind %q", d.Kind)}
	}
}
