// Package scraper orchestrates a full scraping run across the configured
// venues: one listing fetch per venue with an optional aggressive retry,
// candidate extraction and deduplication, then one detail fetch per surviving
// event for tickets and enrichment. Fetches run strictly one at a time; the
// upstream rendering service is rate-limited and its anti-bot waits are
// stateful, so concurrency buys nothing but challenge loops.
package scraper
