package sender

import (
	"encoding/binary"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/wire"
)

func TestSocketSinkWritesLengthPrefixedBatch(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "agent.sock")

	lis, err := net.Listen("unix", sockPath)
	require.NoError(t, err)
	defer lis.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		var lenBuf [8]byte
		if _, err := readFull(conn, lenBuf[:]); err != nil {
			return
		}
		n := binary.BigEndian.Uint64(lenBuf[:])
		payload := make([]byte, n)
		if _, err := readFull(conn, payload); err != nil {
			return
		}
		received <- payload
	}()

	sink, err := NewSocketSink(sockPath)
	require.NoError(t, err)
	defer sink.Close()

	id := wire.NewJobId()
	require.NoError(t, sink.Send(job.Result{ID: id, Status: wire.StatusReachable, Latency: 5 * time.Millisecond}))

	select {
	case payload := <-received:
		var batch wire.CheckBatchRequest
		require.NoError(t, batch.Unmarshal(payload))
		require.Equal(t, "local-agent", batch.Tags.AgentID)
		require.Len(t, batch.Events, 1)
		require.Equal(t, id.String(), batch.Events[0].IDULID)
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive framed batch")
	}
}

func TestNewSocketSinkWrapsDialFailure(t *testing.T) {
	_, err := NewSocketSink("/nonexistent/path/agent.sock")
	require.ErrorIs(t, err, ErrOpenSocket)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
