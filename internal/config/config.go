// Package config loads process configuration from the environment, with a
// local .env file for development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// Config is everything the scraper and the read API take from the
// environment.
type Config struct {
	// FirecrawlAPIKey authenticates against the rendering service.
	FirecrawlAPIKey string
	// FirecrawlBaseURL overrides the service endpoint, for self-hosted
	// deployments.
	FirecrawlBaseURL string

	FirebaseProjectID       string
	FirebaseCredentialsFile string

	DataDir string
	APIAddr string

	// Daily scheduled run time for the API server, local clock.
	ScheduleHour   int
	ScheduleMinute int
}

// Load reads the environment, after merging in a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		FirecrawlAPIKey:         os.Getenv("FIRECRAWL_API_KEY"),
		FirecrawlBaseURL:        os.Getenv("FIRECRAWL_BASE_URL"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		DataDir:                 envOr("DATA_DIR", "data"),
		APIAddr:                 envOr("API_ADDR", ":8080"),
		ScheduleHour:            envInt("SCRAPE_HOUR", 3),
		ScheduleMinute:          envInt("SCRAPE_MINUTE", 0),
	}
}

// SinkOptions renders the Firestore client options for the configured
// credentials. Empty means ambient credentials.
func (c Config) SinkOptions() []option.ClientOption {
	if c.FirebaseCredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(c.FirebaseCredentialsFile)}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
