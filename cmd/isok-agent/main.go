// Package main is the entry point for the isok-agent binary. It wires the
// job registry/scheduler, a probe-backed executor per job, and the batch
// sender together, then blocks until shutdown.
//
// Startup sequence:
//  1. Parse CLI flags / environment variables
//  2. Build logger
//  3. Load agent configuration (YAML, ISOK_AGENT_CONFIG_PATH or search path)
//  4. Build the result sender sink (stdout, socket, or broker)
//  5. Build the job registry from the configured check adapter
//  6. Start the observability HTTP surface (/healthz, /metrics)
//  7. Start the sender runner and scheduler
//  8. Block until SIGINT/SIGTERM, then shut down
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alexandrebrg/isok/internal/agentconfig"
	"github.com/alexandrebrg/isok/internal/job"
	"github.com/alexandrebrg/isok/internal/obs"
	"github.com/alexandrebrg/isok/internal/probe"
	"github.com/alexandrebrg/isok/internal/scheduler"
	"github.com/alexandrebrg/isok/internal/sender"
	"github.com/alexandrebrg/isok/internal/wire"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type config struct {
	configPath string
	logLevel   string
	obsAddr    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config{}

	root := &cobra.Command{
		Use:   "isok-agent",
		Short: "isok agent — runs scheduled health checks and ships results",
		Long: `isok-agent periodically runs HTTP and TCP checks on a fixed cadence and
ships the results to stdout, a local socket, or a broker over gRPC.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringVar(&cfg.configPath, "config", envOrDefault(agentconfig.EnvPath, ""), "Path to the agent config YAML file (overrides "+agentconfig.EnvPath+")")
	root.PersistentFlags().StringVar(&cfg.logLevel, "log-level", envOrDefault("ISOK_AGENT_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.obsAddr, "obs-addr", envOrDefault("ISOK_AGENT_OBS_ADDR", obs.DefaultListenAddr), "Address for the /healthz and /metrics HTTP surface")

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("isok-agent %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func run(ctx context.Context, cfg *config) error {
	logger, err := buildLogger(cfg.logLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	acfg, err := loadAgentConfig(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load agent config: %w", err)
	}

	logger.Info("starting isok agent",
		zap.String("version", version),
		zap.String("main_broker", acfg.MainBroker),
		zap.String("agent_id", acfg.AgentID),
		zap.String("zone", acfg.Zone),
		zap.String("region", acfg.Region),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	clock := job.RealClock{}
	metrics := obs.NewAgentMetrics()

	sink, closeSink, err := buildSink(acfg, metrics, logger, clock)
	if err != nil {
		return fmt.Errorf("failed to build result sink: %w", err)
	}
	if closeSink != nil {
		defer closeSink()
	}

	registry := scheduler.New(clock, logger)
	if err := loadChecks(registry, acfg); err != nil {
		return fmt.Errorf("failed to load checks: %w", err)
	}

	started := make(chan struct{})
	healthChecker, _ := sink.(sender.HealthChecker)
	httpSrv := &http.Server{Addr: cfg.obsAddr, Handler: obs.NewRouter(func() bool {
		select {
		case <-started:
		default:
			return false
		}
		if healthChecker != nil {
			if err := healthChecker.Health(context.Background()); err != nil {
				logger.Warn("broker health check failed", zap.Error(err))
				return false
			}
		}
		return true
	})}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("observability server stopped", zap.Error(err))
		}
	}()
	defer httpSrv.Close()

	runner := sender.NewRunner(sink, registry.Results(), logger)
	go runner.Run(ctx)

	close(started)
	registry.Run(ctx)

	logger.Info("isok agent stopped")
	return nil
}

func buildSink(acfg agentconfig.Config, metrics *obs.AgentMetrics, logger *zap.Logger, clock job.Clock) (sender.Sink, func(), error) {
	switch acfg.ResultSender.Kind {
	case "", "stdout":
		return sender.NewStdoutSink(logger), nil, nil
	case "socket":
		s, err := sender.NewSocketSink(acfg.ResultSender.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "broker":
		s, err := sender.NewBrokerSink(sender.BrokerSinkConfig{
			MainBroker:      acfg.MainBroker,
			FallbackBrokers: acfg.FallbackBrokers,
			AgentID:         acfg.AgentID,
			Zone:            acfg.Zone,
			Region:          acfg.Region,
			Batch:           acfg.Batch,
			BatchInterval:   acfg.BatchInterval(),
		}, metrics, logger, clock)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown result_sender_adapter.kind %q", acfg.ResultSender.Kind)
	}
}

func loadChecks(registry *scheduler.Registry, acfg agentconfig.Config) error {
	var specs []agentconfig.JobSpec
	switch acfg.CheckConfigAdapter.Name {
	case "", "static":
		specs = acfg.CheckConfigAdapter.Checks
	case "file":
		loaded, err := agentconfig.LoadFile(acfg.CheckConfigAdapter.Path)
		if err != nil {
			return err
		}
		specs = loaded.CheckConfigAdapter.Checks
	default:
		return fmt.Errorf("unknown check_config_adapter.name %q", acfg.CheckConfigAdapter.Name)
	}

	for _, spec := range specs {
		id := wire.NewJobId()
		if spec.ID != "" {
			parsed, err := wire.ParseJobId(spec.ID)
			if err != nil {
				return fmt.Errorf("job %q: invalid id %q: %w", spec.PrettyName, spec.ID, err)
			}
			id = parsed
		}
		d := job.Descriptor{
			ID:         id,
			PrettyName: spec.PrettyName,
			Interval:   time.Duration(spec.Interval) * time.Second,
		}
		switch spec.Kind {
		case "http":
			d.Kind = job.KindHTTP
			d.HTTP = job.HTTPParams{Endpoint: spec.Endpoint, Headers: spec.Headers}
		case "tcp":
			d.Kind = job.KindTCP
			d.TCP = job.TCPParams{Endpoint: spec.Endpoint}
		default:
			return fmt.Errorf("job %q: unknown kind %q", spec.PrettyName, spec.Kind)
		}
		if err := registry.Add(d); err != nil {
			return fmt.Errorf("job %q: %w", spec.PrettyName, err)
		}
	}
	return nil
}

func loadAgentConfig(explicitPath string) (agentconfig.Config, error) {
	if explicitPath != "" {
		return agentconfig.LoadFile(explicitPath)
	}
	return agentconfig.Load()
}

func buildLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
