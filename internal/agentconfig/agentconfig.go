// Package agentconfig loads the isok-agent YAML configuration, matching
// isok-agent/src/config.rs field-for-field. Search-path/env-var discovery
// mirrors the original's figment provider chain, reimplemented with
// gopkg.in/yaml.v3 and filepath.Glob since figment has no Go equivalent.
package agentconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPath is the environment variable naming an explicit config file path.
const EnvPath = "ISOK_AGENT_CONFIG_PATH"

// searchGlobs are tried in order when EnvPath is unset; first match wins.
var searchGlobs = []string{
	"/etc/isok/*.yaml",
	"./isok/*.yaml",
	"./*.yaml",
}

// JobSpec is one entry in a static check list, the YAML shape of a single
// job descriptor before it's turned into job.Descriptor.
type JobSpec struct {
	ID         string            `yaml:"id,omitempty"` // ULID string; generated if absent
	PrettyName string            `yaml:"pretty_name"`
	Interval   int               `yaml:"interval"` // seconds
	Kind       string            `yaml:"kind"`     // http | tcp
	Endpoint   string            `yaml:"endpoint"`
	Headers    map[string]string `yaml:"headers,omitempty"`
}

// CheckConfigAdapter selects where job descriptors come from: an inline
// static list, or an external file of the same shape.
type CheckConfigAdapter struct {
	Name   string    `yaml:"name"` // static | file
	Checks []JobSpec `yaml:"checks,omitempty"`
	Path   string    `yaml:"path,omitempty"`
}

// ResultSenderAdapter selects the batch-sender sink.
type ResultSenderAdapter struct {
	Kind string `yaml:"kind"` // stdout | socket | broker
	Path string `yaml:"path,omitempty"`
}

// Config is the complete isok-agent configuration document.
type Config struct {
	MainBroker         string              `yaml:"main_broker"`
	FallbackBrokers    []string            `yaml:"fallback_brokers"`
	Zone               string              `yaml:"zone"`
	Region             string              `yaml:"region"`
	AgentID            string              `yaml:"agent_id"`
	Batch              int                 `yaml:"batch"`
	BatchIntervalSecs  int                 `yaml:"batch_interval"`
	CheckConfigAdapter CheckConfigAdapter  `yaml:"check_config_adapter"`
	ResultSender       ResultSenderAdapter `yaml:"result_sender_adapter"`
}

// BatchInterval returns the configured batch interval as a time.Duration.
func (c Config) BatchInterval() time.Duration {
	return time.Duration(c.BatchIntervalSecs) * time.Second
}

// Default mirrors isok-agent/src/config.rs's Default impl.
func Default() Config {
	return Config{
		MainBroker:         "http://localhost:9000",
		FallbackBrokers:    []string{"http://localhost:9001"},
		Zone:               "dev",
		Region:             "localhost",
		AgentID:            "local-agent",
		Batch:              100,
		BatchIntervalSecs:  10,
		CheckConfigAdapter: CheckConfigAdapter{Name: "static"},
		ResultSender:       ResultSenderAdapter{Kind: "stdout"},
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
		return Config{}, fmt.Errorf("agentconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("agentconfig: parsing %s: %w", path, err)
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
	return "", fmt.Errorf("agentconfig: no config file found (set %s or place one under %v)", EnvPath, searchGlobs)
}
