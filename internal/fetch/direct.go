package fetch

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/partyfinder/scraper/internal/venue"
)

// DirectClient fetches pages with a plain HTTP GET through a Cloudflare
// bypass transport. It does not execute JavaScript, so the wait/scroll config
// is ignored; only server-rendered content is visible.
type DirectClient struct {
	http *resty.Client
}

// NewDirectClient creates the fallback fetcher.
func NewDirectClient() (*DirectClient, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(30 * time.Second)

	return &DirectClient{http: client}, nil
}

// Fetch performs a direct GET of url. The returned result carries the
// response body as both HTML and raw markup; no markdown is produced.
func (c *DirectClient) Fetch(ctx context.Context, url string, _ venue.FetchConfig) (*Result, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	body := string(resp.Body())
	return &Result{
		HTML:       body,
		RawHTML:    body,
		StatusCode: resp.StatusCode(),
	}, nil
}
