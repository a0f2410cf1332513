// Package brokerconfig loads the isok-broker YAML configuration, matching
// isok-broker/src/config.rs field-for-field, with a ratelimit section added
// for the supplemented §4.4 token-bucket guard.
package brokerconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvPath is the environment variable naming an explicit config file path.
const EnvPath = "ISOK_BROKER_CONFIG_PATH"

var searchGlobs = []string{
	"/etc/isok/*.yaml",
	"./isok/*.yaml",
	"./*.yaml",
}

// KafkaConfig configures the durable-log publisher.
type KafkaConfig struct {
	Topic      string            `yaml:"topic"`
	Properties map[string]string `yaml:"properties"`
}

// APIConfig configures the gRPC listener.
type APIConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// RateLimitConfig configures the BatchSend token bucket.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Config is the complete isok-broker configuration document.
type Config struct {
	Kafka     KafkaConfig     `yaml:"kafka"`
	API       APIConfig       `yaml:"api"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// Default mirrors isok-broker/src/config.rs's Default impl, plus a
// generous default rate limit.
func Default() Config {
	return Config{
		Kafka: KafkaConfig{
			Topic:      "isok.agent.results",
			Properties: map[string]string{"bootstrap.servers": "localhost:9092"},
		},
		API: APIConfig{ListenAddress: "127.0.0.1:9000"},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
		},
	}
}

// Load resolves a config path (EnvPath, else the first matching search
// glob) and parses it as YAML over Default's values.
func Load() (Config, error) {
	path, err := resolvePath()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(path)
}

// LoadFile parses path as YAML, starting from Default so omitted fields
// keep their defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("brokerconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("brokerconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func resolvePath() (string, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, nil
	}
	for _, pattern := range searchGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", fmt.Errorf("brokerconfig: no config file found (set %s or place one under %v)", EnvPath, searchGlobs)
}
