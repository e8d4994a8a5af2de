package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/studyhub/internal/api"
	"github.com/dgallion1/studyhub/internal/cache"
	"github.com/dgallion1/studyhub/internal/config"
	"github.com/dgallion1/studyhub/internal/contentstore"
	"github.com/dgallion1/studyhub/internal/pipeline"
	"github.com/dgallion1/studyhub/internal/stats"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	symbols, err := config.LoadSymbols(cfg.SymbolsFile)
	if err != nil {
		log.Error("invalid symbols file", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Render cache is optional.
	var rc *cache.Cache
	if cfg.RenderCachePath != "" {
		rc, err = cache.Open(cfg.RenderCachePath)
		if err != nil {
			log.Error("render cache unavailable", "path", cfg.RenderCachePath, "error", err)
			os.Exit(1)
		}
	}

	// Publishing is enabled only when a content store is configured.
	var cs *contentstore.Client
	if cfg.ContentStoreURL != "" {
		cs = contentstore.NewClient(cfg.ContentStoreURL, cfg.ContentStoreAPIKey)
	}

	renderer := pipeline.NewRenderer(symbols, rc, stats.NewRecorder(cfg.StatsWindow), log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, renderer, cs, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if cs != nil {
			cs.Close()
		}
		if err := rc.Close(); err != nil {
			log.Warn("closing render cache", "error", err)
		}
	}()

	log.Info("starting studyhub",
		"port", cfg.Port,
		"symbols", symbols.Len(),
		"render_cache", cfg.RenderCachePath != "",
		"content_store", cs != nil,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
