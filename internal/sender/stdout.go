package sender

import (
	"go.uber.org/zap"

	"github.com/alexandrebrg/isok/internal/job"
)

// StdoutSink logs each result at Info level. It never fails and performs no
// health check — matches isok-agent/src/batch_sender/mod.rs's debug line,
// upgraded to Info since it's the sink's only observable behavior.
type StdoutSink struct {
	logger *zap.Logger
}

// NewStdoutSink builds a StdoutSink.
func NewStdoutSink(logger *zap.Logger) *StdoutSink {
	return &StdoutSink{logger: logger.Named("sender.stdout")}
}

func (s *StdoutSink) Send(r job.Result) error {
	s.logger.Info("check result",
		zap.String("id", r.ID.String()),
		zap.String("status", r.Status.String()),
		zap.Duration("latency", r.Latency))
	return nil
}
