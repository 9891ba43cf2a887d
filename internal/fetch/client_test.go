package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/partyfinder/scraper/internal/venue"
	"github.com/stretchr/testify/require"
)

func TestActionsFor(t *testing.T) {
	cfg := venue.FetchConfig{
		WaitMilliseconds: 8000,
		ScrollSteps: []venue.ScrollStep{
			{DirectionDown: true, AmountPx: 500, ThenWaitMs: 2000},
		},
		OverallWaitForMs: 5000,
	}

	actions := actionsFor(cfg)
	require.Len(t, actions, 3)
	require.Equal(t, scrapeAction{Type: "wait", Milliseconds: 8000}, actions[0])
	require.Equal(t, scrapeAction{Type: "scroll", Direction: "down", Amount: 500}, actions[1])
	require.Equal(t, scrapeAction{Type: "wait", Milliseconds: 2000}, actions[2])
}

func TestActionsForEmptyConfig(t *testing.T) {
	require.Empty(t, actionsFor(venue.FetchConfig{}))
}

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/scrape", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req scrapeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "https://site.fourvenues.com/es/luminata-disco/events", req.URL)
		require.Contains(t, req.Formats, "markdown")
		require.NotEmpty(t, req.Actions)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"html":     "<html><body>rendered</body></html>",
				"rawHtml":  "<html><body>raw</body></html>",
				"markdown": "# Events",
				"metadata": map[string]any{"statusCode": 200},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{APIKey: "test-key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	result, err := client.Fetch(context.Background(), "https://site.fourvenues.com/es/luminata-disco/events", venue.DefaultFetchConfig())
	require.NoError(t, err)
	require.False(t, result.Empty())
	require.Equal(t, 200, result.StatusCode)
	require.Equal(t, "# Events", result.Markdown)
}

func TestClientFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "insufficient credits"})
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{APIKey: "test-key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), "https://example.com", venue.FetchConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient credits")
}

func TestTestConnection(t *testing.T) {
	var html string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"html": html},
		})
	}))
	defer server.Close()

	client, err := NewClient(ClientOptions{APIKey: "test-key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	html = "<html><body>ok</body></html>"
	require.NoError(t, client.TestConnection(context.Background(), "https://example.com"))

	// A reachable API that renders nothing is still a failed check.
	html = ""
	err = client.TestConnection(context.Background(), "https://example.com")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(ClientOptions{}, nil)
	require.Error(t, err)
}

func TestResultEmpty(t *testing.T) {
	var nilResult *Result
	require.True(t, nilResult.Empty())
	require.True(t, (&Result{Markdown: "only markdown"}).Empty())
	require.False(t, (&Result{HTML: "<html></html>"}).Empty())
	require.False(t, (&Result{RawHTML: "<html></html>"}).Empty())
}
