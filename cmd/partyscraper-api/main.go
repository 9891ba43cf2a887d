package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/partyfinder/scraper/internal/api"
	"github.com/partyfinder/scraper/internal/config"
	"github.com/partyfinder/scraper/internal/fetch"
	"github.com/partyfinder/scraper/internal/logger"
	"github.com/partyfinder/scraper/internal/pipeline"
	"github.com/partyfinder/scraper/internal/scraper"
	"github.com/partyfinder/scraper/internal/store"
	"github.com/partyfinder/scraper/internal/venue"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.New(logger.LevelInfo, os.Stderr)
	logger.SetDefault(log)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	artifacts, err := store.NewArtifacts(cfg.DataDir)
	if err != nil {
		return err
	}

	// Scraping from the API server needs the rendering service; without a
	// key the server still serves the last artifact, read-only.
	var runner api.Runner
	if cfg.FirecrawlAPIKey != "" {
		fetcher, err := fetch.NewClient(fetch.ClientOptions{
			APIKey:  cfg.FirecrawlAPIKey,
			BaseURL: cfg.FirecrawlBaseURL,
		}, log)
		if err != nil {
			return err
		}

		p := &pipeline.Pipeline{
			Scraper:   scraper.New(fetcher, venue.Defaults(), log),
			Artifacts: artifacts,
			Log:       log,
		}
		if cfg.FirebaseProjectID != "" {
			sink, err := store.NewSink(ctx, cfg.FirebaseProjectID, log, cfg.SinkOptions()...)
			if err != nil {
				return err
			}
			defer sink.Close()
			p.Sink = sink
		}
		runner = p
	} else {
		log.Warn("FIRECRAWL_API_KEY not set, serving artifacts read-only", nil)
	}

	server := api.NewServer(artifacts, runner, log)
	if runner != nil {
		go server.ScheduleDaily(ctx, cfg.ScheduleHour, cfg.ScheduleMinute)
	}
	return server.ListenAndServe(ctx, cfg.APIAddr)
}
