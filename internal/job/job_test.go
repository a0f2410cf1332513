package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexandrebrg/isok/internal/wire"
)

func TestDescriptorValidate(t *testing.T) {
	cases := []struct {
		name    string
		d       Descriptor
		wantErr bool
	}{
		{
			name: "valid http",
			d: Descriptor{
				PrettyName: "home",
				Interval:   time.Second,
				Kind:       KindHTTP,
				HTTP:       HTTPParams{Endpoint: "http://127.0.0.1/"},
			},
		},
		{
			name: "valid tcp",
			d: Descriptor{
				PrettyName: "db",
				Interval:   5 * time.Second,
				Kind:       KindTCP,
				TCP:        TCPParams{Endpoint: "127.0.0.1:5432"},
			},
		},
		{
			name:    "empty pretty name",
			d:       Descriptor{Interval: time.Second, Kind: KindHTTP, HTTP: HTTPParams{Endpoint: "x"}},
			wantErr: true,
		},
		{
			name:    "interval too short",
			d:       Descriptor{PrettyName: "x", Interval: 10 * time.Millisecond, Kind: KindHTTP, HTTP: HTTPParams{Endpoint: "x"}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			d:       Descriptor{PrettyName: "x", Interval: time.Second, Kind: "bogus"},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.d.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStateAdvanceIsAntiBurst(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewState(now)
	require.True(t, s.Due(now))

	// Simulate the scheduler having stalled for 10 intervals' worth of time.
	interval := time.Second
	later := now.Add(10 * interval)
	require.True(t, s.Due(later))

	s.Advance(later, interval)
	require.Equal(t, later.Add(interval), s.NextRun)
	require.False(t, s.Due(later))
}

func TestResultToWireSetsLatencyOnlyWhenReachable(t *testing.T) {
	id := wire.NewJobId()
	runAt := time.Now()

	reachable := Result{ID: id, RunAt: runAt, Status: wire.StatusReachable, Latency: 42 * time.Millisecond}
	w := reachable.ToWire()
	require.True(t, w.Metrics.LatencyPresent)
	require.Equal(t, uint64(42), w.Metrics.LatencyMS)

	unreachable := Result{ID: id, RunAt: runAt, Status: wire.StatusUnreachable}
	w = unreachable.ToWire()
	require.False(t, w.Metrics.LatencyPresent)
}
