// Package publisher durably logs published check results to Kafka (C8),
// grounded on isok-broker/src/message_broker.rs's KafkaMessageBroker, ported
// from rdkafka/FutureProducer to github.com/segmentio/kafka-go.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/alexandrebrg/isok/internal/wire"
)

// DefaultTopic matches the original's isok.agent.results default.
const DefaultTopic = "isok.agent.results"

// ackTimeout bounds how long a single publish may take before it's treated
// as a failure — matches the original's 2-second FutureProducer timeout.
const ackTimeout = 2 * time.Second

// ErrUnableToStoreCheckResult is returned when a publish attempt times out
// or the broker rejects the write.
var ErrUnableToStoreCheckResult = errors.New("publisher: unable to store check result")

// Publisher writes individual CheckResult records to the durable log,
// keyed by id_ulid.
type Publisher struct {
	writer *kafka.Writer
}

// Config configures the publisher. Properties mirrors the original's
// arbitrary librdkafka property bag; segmentio/kafka-go has no equivalent
// generic config surface, so only bootstrap.servers is consulted — other
// keys are accepted (so config files port over unmodified) but unused.
type Config struct {
	Topic      string
	Properties map[string]string
}

// New builds a Publisher from cfg. A missing bootstrap.servers property is a
// configuration error, not deferred to the first publish.
func New(cfg Config) (*Publisher, error) {
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	brokers := cfg.Properties["bootstrap.servers"]
	if brokers == "" {
		return nil, fmt.Errorf("publisher: missing bootstrap.servers property")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{writer: w}, nil
}

// Publish writes a single CheckResult, keyed by its id_ulid, within the ack
// deadline. Not the enclosing batch — the durable log stores individual
// events.
func (p *Publisher) Publish(ctx context.Context, event wire.CheckResult) error {
	body := event.Marshal()
	ctx, cancel := context.WithTimeout(ctx, ackTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.IDULID),
		Value: body,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrUnableToStoreCheckResult, err)
	}
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
