package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/wire"
)

func TestHTTPProbeReachableOnAnyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := job.Descriptor{
		PrettyName: "home",
		Interval:   10 * time.Second,
		Kind:       job.KindHTTP,
		HTTP:       job.HTTPParams{Endpoint: srv.URL},
	}
	require.NoError(t, d.Validate())

	exec, err := New(d)
	require.NoError(t, err)

	res, err := exec.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, wire.StatusReachable, res.Status)
	require.Less(t, res.Latency, 5*time.Second)
}

func TestHTTPProbeUnreachableOnTransportError(t *testing.T) {
	d := job.Descriptor{
		PrettyName: "dead",
		Interval:   10 * time.Second,
		Kind:       job.KindHTTP,
		HTTP:       job.HTTPParams{Endpoint: "http://127.0.0.1:1"},
	}
	exec, err := New(d)
	require.NoError(t, err)

	res, err := exec.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, wire.StatusUnreachable, res.Status)
	require.Zero(t, res.Latency)
}

func TestHTTPProbeInvalidHeaderIsConfigError(t *testing.T) {
	d := job.Descriptor{
		PrettyName: "bad-headers",
		Interval:   10 * time.Second,
		Kind:       job.KindHTTP,
		HTTP: job.HTTPParams{
			Endpoint: "http://127.0.0.1/",
			Headers:  map[string]string{"X-Bad": "value\r\ninjected"},
		},
	}
	_, err := New(d)
	require.Error(t, err)
	var cfgErr *InvalidJobConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestTCPProbeValidEndpointOnline(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	go func() {
		for {
			conn, err := lis.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	d := job.Descriptor{
		PrettyName: "local",
		Interval:   10 * time.Second,
		Kind:       job.KindTCP,
		TCP:        job.TCPParams{Endpoint: lis.Addr().String()},
	}
	exec, err := New(d)
	require.NoError(t, err)

	res, err := exec.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, wire.StatusReachable, res.Status)
}

func TestTCPProbeValidEndpointOffline(t *testing.T) {
	d := job.Descriptor{
		PrettyName: "offline",
		Interval:   10 * time.Second,
		Kind:       job.KindTCP,
		TCP:        job.TCPParams{Endpoint: "127.0.0.1:65534"},
	}
	exec, err := New(d)
	require.NoError(t, err)

	res, err := exec.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, wire.StatusUnreachable, res.Status)
	require.Zero(t, res.Latency)
}

func TestTCPProbeInvalidEndpointIsUnreachableNotError(t *testing.T) {
	d := job.Descriptor{
		PrettyName: "garbage",
		Interval:   10 * time.Second,
		Kind:       job.KindTCP,
		TCP:        job.TCPParams{Endpoint: "toto"},
	}
	exec, err := New(d)
	require.NoError(t, err)

	res, err := exec.Execute(context.Background())
	require.NoError(t, err)
	require.Equal(t, wire.StatusUnreachable, res.Status)
}
