package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	cfgpkg "github.com/veranemoloko/post-downloader/internal/config"
	"github.com/veranemoloko/post-downloader/internal/domain"
	"github.com/veranemoloko/post-downloader/internal/fetcher"
	"github.com/veranemoloko/post-downloader/internal/retry"
	svc "github.com/veranemoloko/post-downloader/internal/service"
	"github.com/veranemoloko/post-downloader/internal/storage"
	"github.com/veranemoloko/post-downloader/internal/validation"
	"github.com/veranemoloko/post-downloader/internal/worker"
)

func main() {
	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	app := &cli.App{
		Name:      "postdl",
		Usage:     "download a batch of posts and their tag files",
		ArgsUsage: "POSTS_JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dest",
				Aliases: []string{"d"},
				Usage:   "destination directory",
				Value:   cfg.DownloadDir,
			},
			&cli.BoolFlag{
				Name:  "letterbox",
				Usage: "pad images onto a square black canvas",
				Value: cfg.ApplyLetterboxing,
			},
			&cli.BoolFlag{
				Name:  "save-tags",
				Usage: "write <id>.txt tag files",
				Value: cfg.SaveTags,
			},
			&cli.BoolFlag{
				Name:  "remove-underscores",
				Usage: "replace underscores in tags with spaces",
				Value: cfg.RemoveTagUnderscores,
			},
			&cli.BoolFlag{
				Name:  "escape-parentheses",
				Usage: "backslash-escape parentheses in tags",
				Value: cfg.EscapeTagParentheses,
			},
			&cli.IntFlag{
				Name:  "parallel",
				Usage: "maximum concurrent downloads, 0 for one per post",
				Value: cfg.MaxParallel,
			},
		},
		Action: func(c *cli.Context) error {
			return run(c, cfg)
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("postdl failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context, cfg *cfgpkg.Config) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one POSTS_JSON argument", 2)
	}

	req, err := readRequest(c.Args().First())
	if err != nil {
		return err
	}
	if c.IsSet("dest") || req.Destination == "" {
		req.Destination = c.String("dest")
	}

	if err := validation.ValidateStartRequest(req); err != nil {
		return fmt.Errorf("invalid posts file: %w", err)
	}

	logger := cfgpkg.SetupLogger(cfg)

	fileStorage := storage.NewOSFileStorage()
	postFetcher := fetcher.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxFileSize, cfg.UserAgent, logger)
	postWorker := worker.NewPostWorker(postFetcher, fileStorage, retry.Policy{
		Retries: cfg.RetryCount,
		Delay:   cfg.RetryDelay,
	}, logger)
	coordinator := svc.NewCoordinator(postWorker, fileStorage, c.Int("parallel"), logger)

	coordinator.Subscribe(func(ev domain.Event) {
		switch ev.Type {
		case domain.EventBatchStarted:
			fmt.Fprintf(c.App.Writer, "downloading %d posts\n", ev.State.Total)
		case domain.EventPostFinished:
			fmt.Fprintf(c.App.Writer, "[%d/%d] post %d: %s\n",
				ev.State.Downloaded, ev.State.Total, ev.Result.PostID, ev.Result.Outcome)
		case domain.EventBatchFinished:
			fmt.Fprintln(c.App.Writer, "done")
		case domain.EventBatchCancelled:
			fmt.Fprintln(c.App.Writer, "cancelled")
		}
	})

	settings := req.Settings(domain.Settings{
		ApplyLetterboxing:    c.Bool("letterbox"),
		SaveTags:             c.Bool("save-tags"),
		RemoveTagUnderscores: c.Bool("remove-underscores"),
		EscapeTagParentheses: c.Bool("escape-parentheses"),
	})

	batch, err := coordinator.Start(req.Posts, req.Destination, settings)
	if err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			coordinator.Cancel()
		case <-batch.Done():
		}
	}()

	if err := batch.Wait(context.Background()); err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return coordinator.Shutdown(shutdownCtx)
}

// readRequest accepts either a bare JSON array of posts or a full start
// request object.
func readRequest(path string) (*domain.StartBatchRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read posts file: %w", err)
	}

	var req domain.StartBatchRequest
	if err := json.Unmarshal(data, &req.Posts); err == nil {
		return &req, nil
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse posts file: %w", err)
	}
	return &req, nil
}
