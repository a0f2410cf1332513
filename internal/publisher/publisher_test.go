package publisher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequiresBootstrapServers(t *testing.T) {
	_, err := New(Config{Topic: "isok.agent.results"})
	require.Error(t, err)
}

func TestNewDefaultsTopic(t *testing.T) {
	p, err := New(Config{Properties: map[string]string{"bootstrap.servers": "localhost:9092"}})
	require.NoError(t, err)
	require.Equal(t, DefaultTopic, p.writer.Topic)
}

func TestNewAcceptsCommaSeparatedBrokers(t *testing.T) {
	p, err := New(Config{Properties: map[string]string{"bootstrap.servers": "a:9092,b:9092"}})
	require.NoError(t, err)
	require.NotNil(t, p.writer.Addr)
}
