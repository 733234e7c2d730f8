package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskgate/internal/backend"
	"taskgate/internal/config"
	"taskgate/internal/dispatch"
	"taskgate/internal/ingest"
	"taskgate/internal/lock"
	"taskgate/internal/log"
	"taskgate/internal/metrics"
	"taskgate/internal/placement"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "start":
		os.Exit(runStart(args))
	case "check":
		os.Exit(runCheck(args))
	case "lock":
		os.Exit(runLock(args))
	case "version":
		fmt.Printf("taskgate version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`taskgate - Event-driven task dispatcher

Usage:
  taskgate <command> [flags]

Commands:
  start     Start the dispatcher service in the foreground
  check     Validate configuration syntax, policy, and integrity
  lock      Authorize current configuration state (update integrity hashes)
  version   Show version information
  help      Show this help message

Use 'taskgate <command> --help' for command-specific flags.
`)
}

// resolveConfigPath returns the explicit path or falls back to discovery.
func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	discovered, err := config.DiscoverConfigPath()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", discovered)
	return discovered, nil
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	// Any configuration error is fatal before the listener opens: the
	// service must never become ready to accept events with bad placement.
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("taskgate starting", "version", version, "config", path)

	pidLockPath := cfg.Service.PIDFile
	if pidLockPath == "" {
		pidLockPath = filepath.Join(os.TempDir(), cfg.Service.Name+".pid")
	}
	pidLock, err := lock.AcquirePIDLock(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", pidLockPath, "error", err)
		return 1
	}
	defer pidLock.Release()

	pc, err := placement.New(
		cfg.Placement.ClusterID,
		cfg.Placement.TaskTemplateID,
		cfg.Placement.SubnetIDs,
		cfg.Placement.SecurityBoundaryID,
		cfg.Placement.ContainerName,
		cfg.Placement.StaticEnv,
	)
	if err != nil {
		logger.Error("invalid placement context", "error", err)
		return 1
	}

	runner := backend.NewClient(backend.Config{
		Endpoint:  cfg.Backend.Endpoint,
		AuthToken: cfg.Backend.AuthToken,
		Timeout:   cfg.Backend.Timeout,
	})

	disp := dispatch.New(pc, runner, log.WithComponent("dispatch"))
	if cfg.Metrics.Enabled {
		disp.WithMetrics(metrics.NewPrometheusSink(prometheus.DefaultRegisterer))
	}

	maxBodySize, err := config.ParseMaxBodySize(cfg.Ingest.MaxBodySize)
	if err != nil {
		logger.Error("invalid max body size", "error", err)
		return 1
	}

	ingestServer := ingest.New(ingest.Config{
		Listen:           cfg.Ingest.Listen,
		Path:             cfg.Ingest.Path,
		SignatureHeader:  cfg.Ingest.SignatureHeader,
		Secret:           cfg.Ingest.Secret,
		MaxBodySize:      maxBodySize,
		InvocationBudget: cfg.Service.InvocationBudget,
	}, disp, log.WithComponent("ingest"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)

	go func() {
		if err := ingestServer.Start(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("ingest: %w", err)
		}
	}()

	if cfg.Metrics.Enabled {
		go func() {
			if err := serveMetrics(ctx, cfg.Metrics.Listen); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("metrics: %w", err)
			}
		}()
		logger.Info("metrics server enabled", "listen", cfg.Metrics.Listen)
	}

	logger.Info("taskgate running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("taskgate stopped")
	return 0
}

// serveMetrics runs the Prometheus scrape endpoint until ctx is cancelled.
func serveMetrics(ctx context.Context, listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         listen,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration check FAILED: %v\n", err)
		return 1
	}

	fmt.Println("Configuration check PASSED.")
	fmt.Printf("  service:   %s (log level %s)\n", cfg.Service.Name, cfg.Service.LogLevel)
	fmt.Printf("  placement: cluster %s, template %s, %d subnets\n",
		cfg.Placement.ClusterID, cfg.Placement.TaskTemplateID, len(cfg.Placement.SubnetIDs))
	fmt.Printf("  backend:   %s (timeout %s)\n", cfg.Backend.Endpoint, cfg.Backend.Timeout)
	fmt.Printf("  ingest:    %s%s\n", cfg.Ingest.Listen, cfg.Ingest.Path)
	return 0
}

func runLock(args []string) int {
	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	if err := config.GenerateChecksums(path); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to update checksums: %v\n", err)
		return 1
	}

	fmt.Println("Configuration state authorized (checksums updated).")
	return 0
}
