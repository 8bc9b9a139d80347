// Workflowd is a task orchestration daemon for AI coding agent workflows.
//
// It loads a workflow definition file, builds the dependency graph and
// execution plan, restores persisted runtime state, and serves the
// start/complete/fail handshake over HTTP or MCP stdio. Actual task work
// happens outside the daemon; workflowd only decides and bookkeeps.
//
// Usage:
//
//	# Start the HTTP daemon
//	workflowd --definitions workflow.yaml
//
//	# MCP stdio mode for agent integration
//	workflowd --definitions workflow.yaml --mcp
//
//	# Configure via environment
//	WORKFLOWD_SERVER_HTTP_PORT=9290 workflowd --definitions workflow.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/workflowd/internal/config"
	"github.com/fyrsmithlabs/workflowd/internal/definitions"
	"github.com/fyrsmithlabs/workflowd/internal/events"
	"github.com/fyrsmithlabs/workflowd/internal/httpapi"
	"github.com/fyrsmithlabs/workflowd/internal/logging"
	"github.com/fyrsmithlabs/workflowd/internal/mcp"
	"github.com/fyrsmithlabs/workflowd/internal/statestore"
	"github.com/fyrsmithlabs/workflowd/internal/workflow"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	definitionsPath := flag.String("definitions", "", "path to workflow definitions file (overrides config)")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  workflowd            Start the workflowd daemon\n")
			fmt.Fprintf(os.Stderr, "  workflowd version    Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath, *definitionsPath, *mcpMode); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Shutdown complete")
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("workflowd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires configuration, logging, definitions, state, events, and the
// selected transport, then blocks until ctx is cancelled.
func run(ctx context.Context, configPath, definitionsPath string, mcpMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if definitionsPath != "" {
		cfg.Definitions.Path = definitionsPath
	}
	if cfg.Definitions.Path == "" {
		return fmt.Errorf("definitions path is required (--definitions or config)")
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("starting workflowd",
		zap.String("version", version),
		zap.String("definitions", cfg.Definitions.Path),
		zap.Bool("mcp", mcpMode))

	wf, err := definitions.Load(cfg.Definitions.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}

	var publisher *events.Publisher
	if cfg.Events.Enabled {
		url := cfg.Events.URL
		if cfg.Events.Embedded {
			srv, err := events.StartEmbeddedServer(0, logger)
			if err != nil {
				return fmt.Errorf("failed to start embedded event bus: %w", err)
			}
			defer srv.Shutdown()
			url = srv.ClientURL()
		}
		publisher, err = events.NewPublisher(url, wf.Name, logger)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		defer publisher.Close()
	}

	store := statestore.New(cfg.State.Path, logger)
	svc, err := workflow.New(wf.Name, wf.GraphPhases(), cfg.Orchestrator,
		workflow.Options{Store: store, Events: publisher}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize workflow: %w", err)
	}

	if cfg.Definitions.Watch {
		watcher, err := definitions.NewWatcher(cfg.Definitions.Path, logger)
		if err != nil {
			return fmt.Errorf("failed to create definitions watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start definitions watcher: %w", err)
		}
		go func() {
			for updated := range watcher.Updates() {
				svc.Reload(updated.GraphPhases())
			}
		}()
	}

	if mcpMode {
		mcpServer, err := mcp.NewServer(&mcp.Config{
			Name:    "workflowd",
			Version: version,
			Logger:  logger,
		}, svc)
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}
		// stdio uses stdout for the MCP protocol, status goes to stderr.
		fmt.Fprintln(os.Stderr, "workflowd MCP stdio mode started")
		return mcpServer.Run(ctx)
	}

	server, err := httpapi.NewServer(svc, logger, &httpapi.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		RateLimit: cfg.Server.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
