package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/merobase/internal/config"
	"github.com/rpggio/merobase/internal/domain/activity"
	"github.com/rpggio/merobase/internal/domain/sample"
	"github.com/rpggio/merobase/internal/mcp"
	"github.com/rpggio/merobase/internal/metrics"
	"github.com/rpggio/merobase/internal/transport"
	"golang.org/x/sync/errgroup"
)

var version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer fileWriter.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	app, err := newApp(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	if cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, app.server)
	}
	return runHTTPMode(ctx, logger, app.router(logger), cfg.Server.Host, cfg.Server.Port)
}

type app struct {
	samples  *sample.Service
	activity *activity.Service
	metrics  *metrics.Recorder
	server   *sdkmcp.Server
}

// newApp wires the services on top of store and loads the sample document.
func newApp(ctx context.Context, cfg config.Config, store *storage, logger *slog.Logger) (*app, error) {
	policy, err := sample.ParseCollisionPolicy(cfg.Samples.CollisionPolicy)
	if err != nil {
		return nil, err
	}

	activitySvc := activity.NewService(store.activities, logger)
	opts := []sample.Option{
		sample.WithSlotKey(cfg.Storage.SlotKey),
		sample.WithCollisionPolicy(policy),
	}
	if cfg.Samples.LegacyLatestEdited {
		opts = append(opts, sample.WithLegacyLatestEdited())
	}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder(cfg.Metrics.Runtime)
		opts = append(opts, sample.WithMetrics(recorder))
	}

	samples := sample.NewService(store.slots, activitySvc, logger, opts...)
	if err := samples.Load(ctx); err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Samples:  samples,
			Activity: activitySvc,
		},
		TransportMode: cfg.Transport.Mode,
		Version:       version,
		Logger:        logger,
	})

	return &app{samples: samples, activity: activitySvc, metrics: recorder, server: server}, nil
}

func (a *app) router(logger *slog.Logger) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return a.server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	routes := transport.Routes{MCP: mcpHandler, Logger: logger}
	if a.metrics != nil {
		routes.Metrics = a.metrics.Handler()
	}
	return transport.NewServer(routes)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or ctx is canceled.
	err := server.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, handler http.Handler, host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
