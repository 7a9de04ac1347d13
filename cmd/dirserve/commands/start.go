package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/dirserve/internal/bytesize"
	"github.com/marmos91/dirserve/internal/logger"
	"github.com/marmos91/dirserve/internal/telemetry"
	"github.com/marmos91/dirserve/pkg/adapter/dirserve"
	"github.com/marmos91/dirserve/pkg/api"
	"github.com/marmos91/dirserve/pkg/config"
	"github.com/marmos91/dirserve/pkg/metrics"
	"github.com/marmos91/dirserve/pkg/metrics/prometheus"
	"github.com/marmos91/dirserve/pkg/servedroot"
	"github.com/marmos91/dirserve/pkg/server"
)

var (
	startPort         int
	startRoot         string
	startTransferUnit string
	pidFile           string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the directory server",
	Long: `Start the dirserve server in the foreground.

Without --config the default location $XDG_CONFIG_HOME/dirserve/config.yaml
is used when it exists; otherwise built-in defaults apply (port 8080,
directory ./archivos, created if missing).

Examples:
  # Serve ./archivos on port 8080
  dirserve start

  # Serve another directory with a larger transfer unit
  dirserve start --root /srv/files --transfer-unit 64KiB

  # Start with custom config file
  dirserve start --config /etc/dirserve/config.yaml

  # Start with environment variable overrides
  DIRSERVE_LOGGING_LEVEL=DEBUG dirserve start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().IntVarP(&startPort, "port", "p", 0, "TCP port to listen on (overrides server.port)")
	startCmd.Flags().StringVarP(&startRoot, "root", "r", "", "Directory to serve (overrides server.root)")
	startCmd.Flags().StringVar(&startTransferUnit, "transfer-unit", "", "Streaming chunk size, e.g. 4096 or 64KiB (overrides server.transfer_unit)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Write the process ID to this file")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(GetConfigFile())
	if err != nil {
		return err
	}
	if err := applyStartFlags(cmd, cfg); err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, cfg.TelemetryOptions(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(cfg.ProfilingOptions(Version))
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("dirserve - Single-directory file server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	var serverMetrics metrics.ServerMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		serverMetrics = prometheus.NewServerMetrics()
		logger.Info("Metrics enabled", "path", "/metrics", "port", cfg.API.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	root, err := servedroot.Open(cfg.Server.Root, *cfg.Server.CreateRoot,
		servedroot.WithTransferUnit(cfg.Server.TransferUnit.Int()))
	if err != nil {
		return err
	}

	adapter := dirserve.New(cfg.Server, root, serverMetrics)

	var apiServer *api.Server
	if cfg.API.IsEnabled() {
		apiServer = api.NewServer(cfg.API, root)
		logger.Info("API server configured", "port", cfg.API.Port)
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	srv := server.New(adapter, apiServer)
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// applyStartFlags overrides configuration with the flags set on the
// command line and validates the result again.
func applyStartFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = startPort
	}
	if flags.Changed("root") {
		cfg.Server.Root = startRoot
	}
	if flags.Changed("transfer-unit") {
		size, err := bytesize.ParseByteSize(startTransferUnit)
		if err != nil {
			return fmt.Errorf("invalid --transfer-unit: %w", err)
		}
		cfg.Server.TransferUnit = size
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
