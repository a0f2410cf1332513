package sender

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/wire"
)

// ErrOpenSocket wraps a failure to dial the local stream socket.
var ErrOpenSocket = errors.New("sender: unable to open socket")

// ErrWriteSocket wraps a failure writing a framed batch to the socket.
var ErrWriteSocket = errors.New("sender: unable to write socket")

// socketFixedTags are applied to every single-event batch sent over the
// socket sink, per spec — the socket sink has no broader agent identity to
// draw on.
var socketFixedTags = wire.Tags{AgentID: "local-agent", Zone: "dev", Region: "localhost"}

// SocketSink writes one-event batches to a Unix domain stream socket,
// length-prefixed by an 8-byte big-endian payload length.
type SocketSink struct {
	conn net.Conn
}

// NewSocketSink dials path as a Unix domain socket.
func NewSocketSink(path string) (*SocketSink, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenSocket, err)
	}
	return &SocketSink{conn: conn}, nil
}

func (s *SocketSink) Send(r job.Result) error {
	batch := wire.CheckBatchRequest{
		Tags:   socketFixedTags,
		Events: []wire.CheckResult{r.ToWire()},
	}
	payload, err := batch.Marshal()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteSocket, err)
	}

	var framed [8]byte
	binary.BigEndian.PutUint64(framed[:], uint64(len(payload)))
	buf := append(framed[:], payload...)

	// net.Conn.Write on a single []byte slice has no short-write risk for
	// most conn types, but the loop is kept to cover conn implementations
	// that can partial-write (e.g. a pipe-backed net.Conn).
	for len(buf) > 0 {
		n, err := s.conn.Write(buf)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWriteSocket, err)
		}
		buf = buf[n:]
	}
	return nil
}

// Close closes the underlying socket connection.
func (s *SocketSink) Close() error {
	return s.conn.Close()
}
