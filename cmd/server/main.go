package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	h "github.com/veranemoloko/post-downloader/internal/api/http"
	cfgpkg "github.com/veranemoloko/post-downloader/internal/config"
	"github.com/veranemoloko/post-downloader/internal/domain"
	"github.com/veranemoloko/post-downloader/internal/fetcher"
	"github.com/veranemoloko/post-downloader/internal/retry"
	svc "github.com/veranemoloko/post-downloader/internal/service"
	"github.com/veranemoloko/post-downloader/internal/storage"
	"github.com/veranemoloko/post-downloader/internal/worker"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully")

	fileStorage := storage.NewOSFileStorage()
	postFetcher := fetcher.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxFileSize, cfg.UserAgent, logger)
	postWorker := worker.NewPostWorker(postFetcher, fileStorage, retry.Policy{
		Retries: cfg.RetryCount,
		Delay:   cfg.RetryDelay,
	}, logger)

	coordinator := svc.NewCoordinator(postWorker, fileStorage, cfg.MaxParallel, logger)
	coordinator.Subscribe(func(ev domain.Event) {
		logger.Debug("download event",
			"type", ev.Type,
			"batch_id", ev.BatchID,
			"downloaded", ev.State.Downloaded,
			"total", ev.State.Total,
		)
	})

	router := h.NewRouter(coordinator, h.Defaults{
		Destination: cfg.DownloadDir,
		Settings:    cfg.Settings(),
	}, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}

	if err := coordinator.Shutdown(shutdownCtx); err != nil {
		slog.Error("coordinator shutdown failed", "error", err)
	}
}
