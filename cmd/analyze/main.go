package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/brandpulse/config"
	"github.com/spacesedan/brandpulse/internal/logging"
	"github.com/spacesedan/brandpulse/internal/models"
	"github.com/spacesedan/brandpulse/internal/pipeline"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	logging.InitLogger(cfg.LogLevel)
	if err != nil {
		slog.Error("[Analyze] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	brandName := flag.String("brand", "", "brand name to analyze")
	socialMax := flag.Int("social-max", cfg.Limits.SocialMax, "max social posts")
	newsMax := flag.Int("news-max", cfg.Limits.NewsMax, "max news articles")
	redditLimit := flag.Int("reddit-limit", cfg.Limits.RedditLimit, "reddit results per query")
	flag.Parse()

	if *brandName == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -brand <name> [-social-max N] [-news-max N] [-reddit-limit N]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := pipeline.Build(ctx, cfg)
	if err != nil {
		slog.Error("[Analyze] Failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.Close()

	res, err := deps.Pipeline.Analyze(ctx, *brandName, models.FetchLimits{
		SocialMax:   *socialMax,
		NewsMax:     *newsMax,
		RedditLimit: *redditLimit,
	}, func(status models.JobStatus) {
		slog.Info("[Analyze] Stage", slog.String("status", string(status)))
	})
	if err != nil {
		slog.Error("[Analyze] Analysis failed", slog.String("error", err.Error()))
		deps.Close()
		os.Exit(1)
	}

	fmt.Print(res.Report)
}
