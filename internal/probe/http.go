package probe

import (
	"context"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/wire"
)

type httpExecutor struct {
	descriptor job.Descriptor
	headers    http.Header
}

func newHTTPExecutor(d job.Descriptor) (*httpExecutor, error) {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	for name, value := range d.HTTP.Headers {
		if err := validateHeader(name, value); err != nil {
			return nil, &InvalidJobConfigError{Reason: err.Error()}
		}
		h.Set(name, value)
	}
	return &httpExecutor{descriptor: d, headers: h}, nil
}

// validateHeader rejects header names/values that net/http would otherwise
// silently drop or reject deep inside request.Write — surfacing the error
// at job-construction time instead.
func validateHeader(name, value string) error {
	if name == "" || textproto.TrimString(name) == "" {
		return &headerError{"empty header name"}
	}
	if strings.ContainsAny(name, "\r\n") || strings.ContainsAny(value, "\r\n") {
		return &headerError{"header name or value contains CR/LF"}
	}
	return nil
}

type headerError struct{ msg string }

func (e *headerError) Error() string { return e.msg }

func (e *httpExecutor) Execute(ctx context.Context) (job.Result, error) {
	runAt := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.descriptor.HTTP.Endpoint, nil)
	if err != nil {
		return job.Result{}, &InvalidJobConfigError{Reason: err.Error()}
	}
	req.Header = e.headers.Clone()

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return job.Result{
			ID:     e.descriptor.ID,
			RunAt:  runAt,
			Status: wire.StatusUnreachable,
		}, nil
	}
	defer resp.Body.Close()

	return job.Result{
		ID:      e.descriptor.ID,
		RunAt:   runAt,
		Status:  wire.StatusReachable,
		Latency: time.Since(runAt),
	}, nil
}
