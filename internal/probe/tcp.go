package probe

import (
	"context"
	"net"
	"time"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/wire"
)

type tcpExecutor struct {
	descriptor job.Descriptor
}

func (e *tcpExecutor) Execute(ctx context.Context) (job.Result, error) {
	runAt := time.Now()

	addr, err := net.ResolveTCPAddr("tcp", e.descriptor.TCP.Endpoint)
	if err != nil {
		// An unparseable endpoint is data, not an error: the job is
		// configured to point at an address that doesn't resolve.
		return job.Result{
			ID:     e.descriptor.ID,
			RunAt:  runAt,
			Status: wire.StatusUnreachable,
		}, nil
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return job.Result{
			ID:     e.descriptor.ID,
			RunAt:  runAt,
			Status: wire.StatusUnreachable,
		}, nil
	}
	_ = conn.Close()

	return job.Result{
		ID:      e.descriptor.ID,
		RunAt:   runAt,
		Status:  wire.StatusReachable,
		Latency: time.Since(runAt),
	}, nil
}
