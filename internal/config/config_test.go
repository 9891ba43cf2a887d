package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FIRECRAWL_API_KEY", "fc-test")
	t.Setenv("DATA_DIR", "")
	t.Setenv("SCRAPE_HOUR", "")

	cfg := Load()
	require.Equal(t, "fc-test", cfg.FirecrawlAPIKey)
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, ":8080", cfg.APIAddr)
	require.Equal(t, 3, cfg.ScheduleHour)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/partyscraper")
	t.Setenv("SCRAPE_HOUR", "5")
	t.Setenv("SCRAPE_MINUTE", "30")

	cfg := Load()
	require.Equal(t, "/var/lib/partyscraper", cfg.DataDir)
	require.Equal(t, 5, cfg.ScheduleHour)
	require.Equal(t, 30, cfg.ScheduleMinute)
}

func TestSinkOptions(t *testing.T) {
	cfg := Config{}
	require.Empty(t, cfg.SinkOptions())

	cfg.FirebaseCredentialsFile = "/etc/keys/firebase.json"
	require.Len(t, cfg.SinkOptions(), 1)
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("SCRAPE_HOUR", "not-a-number")
	require.Equal(t, 3, Load().ScheduleHour)
}
