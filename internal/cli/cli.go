// Package cli implements the partyscraper command.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partyfinder/scraper/internal/config"
	"github.com/partyfinder/scraper/internal/fetch"
	"github.com/partyfinder/scraper/internal/logger"
	"github.com/partyfinder/scraper/internal/pipeline"
	"github.com/partyfinder/scraper/internal/scraper"
	"github.com/partyfinder/scraper/internal/store"
	"github.com/partyfinder/scraper/internal/venue"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitNoEvents = 2
)

// errNoEvents marks a clean run that produced nothing. It travels up through
// cobra so deferred cleanup still runs before the process exits.
var errNoEvents = errors.New("no events produced")

var (
	flagURLs           []string
	flagConfig         string
	flagDataDir        string
	flagFormat         string
	flagTest           bool
	flagTestConnection bool
	flagPublish        bool
	flagSkipDetails    bool
	flagDirect         bool
	flagVerbose        bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partyscraper",
		Short: "Scrape nightclub events and publish them for the app",
		Long: `Scrapes the configured venues' event listings, fetches each event's
detail page for tickets and enrichment, and writes the normalized records
to a local artifact. With --publish the records also replace the previous
scraper-owned documents in Firestore.`,
		RunE:          runScrape,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringSliceVar(&flagURLs, "urls", nil, "Restrict the run to these listing URLs")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Venue config YAML (default: built-in venue table)")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "", "Artifact directory (default: $DATA_DIR or ./data)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagTest, "test", false, "Dry run: scrape and print, never publish")
	cmd.Flags().BoolVar(&flagTestConnection, "test-connection", false, "Verify rendering-service credentials and exit")
	cmd.Flags().BoolVar(&flagPublish, "publish", false, "Publish the records to Firestore")
	cmd.Flags().BoolVar(&flagSkipDetails, "skip-details", false, "Skip per-event detail fetches")
	cmd.Flags().BoolVar(&flagDirect, "direct", false, "Fetch pages directly instead of through the rendering service")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, os.Stderr)
	logger.SetDefault(log)

	cfg := config.Load()
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	venues := venue.Defaults()
	if flagConfig != "" {
		var err error
		if venues, err = venue.Load(flagConfig); err != nil {
			return err
		}
	}

	if flagTestConnection {
		return testConnection(cmd, cfg, venues, log)
	}

	fetcher, err := buildFetcher(cfg, log)
	if err != nil {
		return err
	}

	artifacts, err := store.NewArtifacts(cfg.DataDir)
	if err != nil {
		return err
	}

	p := &pipeline.Pipeline{
		Scraper:   scraper.New(fetcher, venues, log),
		Artifacts: artifacts,
		Options: scraper.RunOptions{
			URLs:        flagURLs,
			SkipDetails: flagSkipDetails,
		},
		Log: log,
	}

	ctx := cmd.Context()
	if flagPublish && !flagTest {
		if cfg.FirebaseProjectID == "" {
			return fmt.Errorf("--publish requires FIREBASE_PROJECT_ID")
		}
		sink, err := store.NewSink(ctx, cfg.FirebaseProjectID, log, cfg.SinkOptions()...)
		if err != nil {
			return err
		}
		defer sink.Close()
		p.Sink = sink
	}

	info, err := p.RunOnce(ctx)
	if err != nil {
		return err
	}

	if err := WriteOutput(os.Stdout, info, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if len(info.Records) == 0 {
		return errNoEvents
	}
	return nil
}

// testConnection runs one minimal scrape against the first configured venue
// to verify credentials and reachability.
func testConnection(cmd *cobra.Command, cfg config.Config, venues []venue.Venue, log *logger.Logger) error {
	client, err := fetch.NewClient(fetch.ClientOptions{
		APIKey:  cfg.FirecrawlAPIKey,
		BaseURL: cfg.FirecrawlBaseURL,
	}, log)
	if err != nil {
		return err
	}

	target := venues[0].EventsURL()
	if err := client.TestConnection(cmd.Context(), target); err != nil {
		return fmt.Errorf("connection test against %s failed: %w", target, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Connection OK: %s\n", target)
	return nil
}

func buildFetcher(cfg config.Config, log *logger.Logger) (fetch.Fetcher, error) {
	if flagDirect {
		return fetch.NewDirectClient()
	}
	return fetch.NewClient(fetch.ClientOptions{
		APIKey:  cfg.FirecrawlAPIKey,
		BaseURL: cfg.FirecrawlBaseURL,
	}, log)
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNoEvents):
		return ExitNoEvents
	default:
		return ExitError
	}
}

// Execute runs the CLI.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil && !errors.Is(err, errNoEvents) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if code := exitCode(err); code != ExitSuccess {
		os.Exit(code)
	}
}
