// Package main is the entry point for the isok-broker binary. It wires the
// durable-log publisher, the rate-limited gRPC ingress service, and the
// observability surface together, then blocks until shutdown.
//
// Startup sequence:
//  1. Parse CLI flags / environment variables
//  2. Build logger
//  3. Load broker configuration (YAML, ISOK_BROKER_CONFIG_PATH or search path)
//  4. Build the Kafka publisher
//  5. Build the gRPC server (ingress service + rate-limit interceptor)
//  6. Start the observability HTTP surface (/healthz, /metrics)
//  7. Block until SIGINT/SIGTERM, then graceful stop
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/alexandrebrg/isok/internal/brokerconfig"
	"github.com/alexandrebrg/isok/internal/ingress"
	"github.com/alexandrebrg/isok/internal/obs"
	"github.com/alexandrebrg/isok/internal/publisher"
	"github.com/alexandrebrg/isok/internal/ratelimit"
	"github.com/alexandrebrg/isok/internal/rpcproto"
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
		Use:   "isok-broker",
		Short: "isok broker — accepts check batches from agents and durably logs them",
		Long: `isok-broker exposes a gRPC BatchSend/Health surface for agents and
publishes every received check result to a durable Kafka log.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newVersionCmd())

	root.PersistentFlags().StringVar(&cfg.configPath, "config", envOrDefault(brokerconfig.EnvPath, ""), "Path to the broker config YAML file (overrides "+brokerconfig.EnvPath+")")
	root.PersistentFlags().StringVar(&cfg.logLevel, "log-level", envOrDefault("ISOK_BROKER_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.obsAddr, "obs-addr", envOrDefault("ISOK_BROKER_OBS_ADDR", obs.DefaultListenAddr), "Address for the /healthz and /metrics HTTP surface")

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("isok-broker %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func run(ctx context.Context, cfg *config) error {
	logger, err := buildLogger(cfg.logLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	bcfg, err := loadBrokerConfig(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load broker config: %w", err)
	}

	logger.Info("starting isok broker",
		zap.String("version", version),
		zap.String("listen_address", bcfg.API.ListenAddress),
		zap.String("kafka_topic", bcfg.Kafka.Topic),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pub, err := publisher.New(publisher.Config{
		Topic:      bcfg.Kafka.Topic,
		Properties: bcfg.Kafka.Properties,
	})
	if err != nil {
		return fmt.Errorf("failed to build publisher: %w", err)
	}
	defer pub.Close()

	metrics := obs.NewBrokerMetrics()
	svc := ingress.New(pub, logger, metrics)

	limiter := ratelimit.New(bcfg.RateLimit.RequestsPerSecond, bcfg.RateLimit.Burst, func() {
		metrics.RateLimitedTotal.Inc()
	})

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(limiter.UnaryServerInterceptor(rpcproto.BrokerService_BatchSend_FullMethodName)),
	)
	rpcproto.RegisterBrokerServiceServer(grpcServer, svc)

	lis, err := net.Listen("tcp", bcfg.API.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bcfg.API.ListenAddress, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(lis)
	}()

	started := make(chan struct{})
	close(started)
	httpSrv := &http.Server{Addr: cfg.obsAddr, Handler: obs.NewRouter(func() bool {
		select {
		case <-started:
			return true
		default:
			return false
		}
	})}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("observability server stopped", zap.Error(err))
		}
	}()
	defer httpSrv.Close()

	select {
	case <-ctx.Done():
		logger.Info("shutting down isok broker")
		grpcServer.GracefulStop()
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("grpc server stopped: %w", err)
		}
	}

	logger.Info("isok broker stopped")
	return nil
}

func loadBrokerConfig(explicitPath string) (brokerconfig.Config, error) {
	if explicitPath != "" {
		return brokerconfig.LoadFile(explicitPath)
	}
	return brokerconfig.Load()
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
