package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/partyfinder/scraper/internal/logger"
	"github.com/partyfinder/scraper/internal/venue"
)

const (
	defaultBaseURL = "https://api.firecrawl.dev"
	// The API holds the connection open while actions run, so the HTTP
	// timeout has to cover the whole wait/scroll budget.
	requestTimeout = 120 * time.Second
)

// Client fetches pages through the managed scraping API.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// ClientOptions configures the scraping API client.
type ClientOptions struct {
	APIKey  string
	BaseURL string
}

// NewClient creates a scraping API client. The API key is required.
func NewClient(opts ClientOptions, log *logger.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("scraping API key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if log == nil {
		log = logger.Default()
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetAuthToken(opts.APIKey)
	client.SetHeader("content-type", "application/json")
	client.SetTimeout(requestTimeout)

	return &Client{http: client, log: log}, nil
}

type scrapeAction struct {
	Type         string `json:"type"`
	Milliseconds int    `json:"milliseconds,omitempty"`
	Direction    string `json:"direction,omitempty"`
	Amount       int    `json:"amount,omitempty"`
}

type scrapeRequest struct {
	URL     string         `json:"url"`
	Formats []string       `json:"formats"`
	Actions []scrapeAction `json:"actions,omitempty"`
	WaitFor int            `json:"waitFor,omitempty"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		HTML     string `json:"html"`
		RawHTML  string `json:"rawHtml"`
		Markdown string `json:"markdown"`
		Metadata struct {
			StatusCode int `json:"statusCode"`
		} `json:"metadata"`
	} `json:"data"`
}

// actionsFor translates a venue fetch config into the API's action list: one
// initial wait, then each scroll step followed by its settle wait.
func actionsFor(cfg venue.FetchConfig) []scrapeAction {
	var actions []scrapeAction
	if cfg.WaitMilliseconds > 0 {
		actions = append(actions, scrapeAction{Type: "wait", Milliseconds: cfg.WaitMilliseconds})
	}
	for _, step := range cfg.ScrollSteps {
		direction := "down"
		if !step.DirectionDown {
			direction = "up"
		}
		actions = append(actions, scrapeAction{Type: "scroll", Direction: direction, Amount: step.AmountPx})
		if step.ThenWaitMs > 0 {
			actions = append(actions, scrapeAction{Type: "wait", Milliseconds: step.ThenWaitMs})
		}
	}
	return actions
}

// Fetch renders url through the scraping API and returns its page
// representations. A response with neither HTML nor raw markup is returned
// as-is; callers detect it with Result.Empty.
func (c *Client) Fetch(ctx context.Context, url string, cfg venue.FetchConfig) (*Result, error) {
	body := scrapeRequest{
		URL:     url,
		Formats: []string{"html", "rawHtml", "markdown"},
		Actions: actionsFor(cfg),
		WaitFor: cfg.OverallWaitForMs,
	}

	var parsed scrapeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		SetError(&parsed).
		Post("/v1/scrape")
	if err != nil {
		return nil, fmt.Errorf("scraping API request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("scraping API returned %s: %s", resp.Status(), parsed.Error)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("scraping API refused %s: %s", url, parsed.Error)
	}

	result := &Result{
		HTML:       parsed.Data.HTML,
		RawHTML:    parsed.Data.RawHTML,
		Markdown:   parsed.Data.Markdown,
		StatusCode: parsed.Data.Metadata.StatusCode,
	}

	c.log.Debug("page fetched", logger.Fields{
		"url":      url,
		"status":   result.StatusCode,
		"html":     len(result.HTML),
		"raw_html": len(result.RawHTML),
		"markdown": len(result.Markdown),
	})

	return result, nil
}

// TestConnection performs a minimal scrape against url to verify credentials
// and reachability.
func (c *Client) TestConnection(ctx context.Context, url string) error {
	result, err := c.Fetch(ctx, url, venue.FetchConfig{WaitMilliseconds: 2000})
	if err != nil {
		return err
	}
	if result.Empty() {
		return ErrUnavailable
	}
	return nil
}
