package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/partyfinder/scraper/internal/event"
	"github.com/partyfinder/scraper/internal/fetch"
	"github.com/partyfinder/scraper/internal/scraper"
	"github.com/partyfinder/scraper/internal/store"
	"github.com/partyfinder/scraper/internal/venue"
)

type stubPublisher struct {
	published []event.Record
	err       error
}

func (p *stubPublisher) ReplaceScraped(_ context.Context, records []event.Record) error {
	p.published = records
	return p.err
}

type listingFetcher struct{}

func (listingFetcher) Fetch(_ context.Context, url string, _ venue.FetchConfig) (*fetch.Result, error) {
	if url == "https://site.fourvenues.com/es/luminata-disco/events" {
		return &fetch.Result{HTML: `<html><body>
			<a href="/es/luminata-disco/events/fiesta-K7HZ"
			   aria-label="Evento: FIESTA. Fecha: 10 de enero. Horario: de 23:00 a 06:00"></a>
		</body></html>`}, nil
	}
	return &fetch.Result{}, nil
}

func testPipeline(t *testing.T, sink Publisher) *Pipeline {
	t.Helper()
	artifacts, err := store.NewArtifacts(t.TempDir())
	require.NoError(t, err)

	venues := []venue.Venue{venue.BySlug(venue.Defaults())["luminata-disco"]}
	return &Pipeline{
		Scraper:   scraper.New(listingFetcher{}, venues, nil),
		Artifacts: artifacts,
		Sink:      sink,
		Options:   scraper.RunOptions{SkipDetails: true},
	}
}

func TestRunOncePublishes(t *testing.T) {
	sink := &stubPublisher{}
	p := testPipeline(t, sink)

	info, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Records, 1)
	require.Len(t, sink.published, 1)

	// The artifact is on disk and loadable.
	loaded, err := p.Artifacts.LoadRecords()
	require.NoError(t, err)
	require.Len(t, loaded.Records, 1)

	require.FileExists(t, filepath.Join(p.Artifacts.Dir(), "raw_luminata-disco.json"))
}

func TestRunOncePublishFailureKeepsArtifact(t *testing.T) {
	sink := &stubPublisher{err: fmt.Errorf("permission denied")}
	p := testPipeline(t, sink)

	info, err := p.RunOnce(context.Background())
	require.Error(t, err)
	require.Len(t, info.Records, 1)

	loaded, loadErr := p.Artifacts.LoadRecords()
	require.NoError(t, loadErr)
	require.Len(t, loaded.Records, 1)
}

func TestRunOnceWithoutSink(t *testing.T) {
	p := testPipeline(t, nil)
	_, err := p.RunOnce(context.Background())
	require.NoError(t, err)
}
