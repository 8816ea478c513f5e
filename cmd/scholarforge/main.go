// ScholarForge server — provides the HTTP API and orchestrates the
// multi-agent proposal pipeline. With -topic it runs one job from the
// command line and exits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/api"
	"github.com/scholarforge/scholarforge/pkg/config"
	"github.com/scholarforge/scholarforge/pkg/jobs"
	"github.com/scholarforge/scholarforge/pkg/llm"
	"github.com/scholarforge/scholarforge/pkg/models"
	"github.com/scholarforge/scholarforge/pkg/sources"
	"github.com/scholarforge/scholarforge/pkg/store"
	"github.com/scholarforge/scholarforge/pkg/version"
	"github.com/scholarforge/scholarforge/pkg/workflow"
)

const (
	exitOK         = 0
	exitJobFailure = 1
	exitInvocation = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	topic := flag.String("topic", "", "Run a single proposal job for this topic and exit")
	keyPoint := flag.String("key-points", "", "Comma-separated key points for -topic mode")
	envFile := flag.String("env-file", ".env", "Path to an optional .env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Debug("No .env file loaded", "path", *envFile, "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return exitInvocation
	}

	ctx := context.Background()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open state store", "backend", cfg.Store.Backend, "error", err)
		return exitInvocation
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("Error closing state store", "error", err)
		}
	}()
	slog.Info("State store ready", "backend", cfg.Store.Backend)

	provider, err := llm.NewProvider(&cfg.LLM)
	if err != nil {
		slog.Error("Failed to build LLM provider", "error", err)
		return exitInvocation
	}
	gateway := llm.NewGateway(provider, &cfg.LLM)
	defer func() {
		if err := gateway.Close(); err != nil {
			slog.Error("Error closing LLM gateway", "error", err)
		}
	}()
	slog.Info("LLM gateway ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	mux := buildSources(st, cfg)

	var search agent.PaperSearch
	if mux != nil {
		search = mux
	}
	registry, err := agent.NewDefaultRegistry(gateway, search, cfg.Sources.SearchLimit)
	if err != nil {
		slog.Error("Failed to register agents", "error", err)
		return exitInvocation
	}
	slog.Info("Agent fleet registered", "count", registry.Count())

	scheduler := workflow.NewScheduler(registry, st, cfg.Scheduler)
	manager := jobs.NewManager(registry, scheduler, cfg.Scheduler)

	if *topic != "" {
		return runOnce(ctx, manager, *topic, *keyPoint)
	}

	server := api.NewServer(manager, registry, st, mux)
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.HTTPPort
		slog.Info("HTTP server listening", "addr", addr, "version", version.Full())
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	manager.Stop(cfg.Scheduler.GracefulShutdownTimeout)

	httpCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(httpCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	return exitOK
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Store.Backend == "redis" {
		return store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
	}
	return store.NewMemoryStore(), nil
}

// buildSources wires the enabled academic source connectors. Returns
// nil when none are enabled; the literature agent then proceeds with
// zero papers.
func buildSources(st store.Store, cfg *config.Config) *sources.Multiplexer {
	mailto := os.Getenv("SOURCES_MAILTO")
	var connectors []sources.Connector
	for _, name := range cfg.Sources.Enabled {
		switch name {
		case "semantic_scholar":
			conn := sources.NewSemanticScholar(st, cfg.Sources.CacheTTL, cfg.Sources.RequestTimeout, cfg.Sources.MaxAttempts)
			if key := os.Getenv("SEMANTIC_SCHOLAR_API_KEY"); key != "" {
				conn = conn.WithAPIKey(key)
			}
			connectors = append(connectors, conn)
		case "openalex":
			conn := sources.NewOpenAlex(st, cfg.Sources.CacheTTL, cfg.Sources.RequestTimeout, cfg.Sources.MaxAttempts)
			if mailto != "" {
				conn = conn.WithMailto(mailto)
			}
			connectors = append(connectors, conn)
		case "crossref":
			conn := sources.NewCrossref(st, cfg.Sources.CacheTTL, cfg.Sources.RequestTimeout, cfg.Sources.MaxAttempts)
			if mailto != "" {
				conn = conn.WithMailto(mailto)
			}
			connectors = append(connectors, conn)
		default:
			slog.Warn("Unknown source connector, skipping", "name", name)
		}
	}
	if len(connectors) == 0 {
		return nil
	}
	return sources.NewMultiplexer(connectors...)
}

// runOnce executes a single job synchronously and prints the proposal
// as JSON to stdout.
func runOnce(ctx context.Context, manager *jobs.Manager, topic, keyPoints string) int {
	req := &models.ProposalRequest{Topic: topic}
	for _, kp := range strings.Split(keyPoints, ",") {
		if kp = strings.TrimSpace(kp); kp != "" {
			req.KeyPoints = append(req.KeyPoints, kp)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	snap, err := manager.Run(ctx, req)
	if err != nil {
		if snap == nil {
			slog.Error("Invalid request", "error", err)
			return exitInvocation
		}
		slog.Error("Job failed", "job_id", snap.ID, "status", snap.Status, "error", err)
		return exitJobFailure
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap.Proposal); err != nil {
		slog.Error("Failed to encode proposal", "error", err)
		return exitJobFailure
	}
	slog.Info("Job completed", "job_id", snap.ID,
		"word_count", snap.Proposal.Metadata.TotalWordCount,
		"partial", snap.Proposal.Metadata.PartialSuccess)
	return exitOK
}
