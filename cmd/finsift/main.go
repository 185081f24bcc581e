package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finsift/finsift/api"
	"github.com/finsift/finsift/cache"
	"github.com/finsift/finsift/config"
	"github.com/finsift/finsift/crawler"
	"github.com/finsift/finsift/engine"
	"github.com/finsift/finsift/extract"
	"github.com/finsift/finsift/models"
	"github.com/finsift/finsift/redact"
	"github.com/finsift/finsift/sink"
	"github.com/finsift/finsift/snapshot"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("finsift starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"sink", cfg.Sink.Driver,
	)

	// ── 3. Initialise fetch engine and extractor ────────────────────
	eng := engine.NewHTTPEngine()
	ex := extract.New()

	// ── 3b. Open the record sink ────────────────────────────────────
	snk, err := sink.Open(cfg.Sink.Driver, cfg.Sink.Path)
	if err != nil {
		slog.Error("failed to open sink", "driver", cfg.Sink.Driver, "path", cfg.Sink.Path, "error", err)
		os.Exit(1)
	}
	defer snk.Close()

	// ── 4. Initialise crawler ───────────────────────────────────────
	var renderer *snapshot.Renderer
	if cfg.Crawl.StoreSnapshots {
		renderer = snapshot.NewRenderer()
	}
	cr := crawler.New(eng, ex, snk, crawler.Options{
		Renderer:     renderer,
		FetchTimeout: cfg.Fetch.DefaultTimeout,
		Concurrency:  cfg.Crawl.Concurrency,
	})

	// ── 4b. Initialise cache ────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(eng, ex, cr, cfg, cc, startTime)

	// ── 5b. Autostart crawl from configuration ──────────────────────
	if len(cfg.Crawl.StartURLs) > 0 {
		req := models.CrawlRequest{
			StartURLs:          cfg.Crawl.StartURLs,
			MaxRequests:        cfg.Crawl.MaxRequests,
			MaxDepth:           cfg.Crawl.MaxDepth,
			FollowInternalOnly: &cfg.Crawl.FollowInternalOnly,
			RedactPII:          &cfg.Crawl.RedactPII,
			RequestsPerSecond:  cfg.Crawl.RequestsPerSecond,
		}
		job := &models.CrawlJob{
			ID:        "crawl-boot",
			Status:    "processing",
			CreatedAt: time.Now().Unix(),
		}
		slog.Info("autostart crawl launched", "seeds", len(cfg.Crawl.StartURLs))
		go cr.Run(context.Background(), job, req)
	}

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// snk.Close() runs via defer — flushes the record file or database.
	slog.Info("finsift stopped")
}

// initLogger configures slog based on the LogConfig. Every handler is
// wrapped in the redacting handler so PII never reaches the logs, no
// matter which code path logs page content.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(redact.NewHandler(handler)))
}
