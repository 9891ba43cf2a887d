package scraper

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/partyfinder/scraper/internal/fetch"
	"github.com/partyfinder/scraper/internal/venue"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves queued results per URL, in order, so a retry can see a
// different page than the first fetch.
type stubFetcher struct {
	pages map[string][]*fetch.Result
	errs  map[string]error
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string, _ venue.FetchConfig) (*fetch.Result, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	queue := f.pages[url]
	if len(queue) == 0 {
		return &fetch.Result{}, nil
	}
	page := queue[0]
	if len(queue) > 1 {
		f.pages[url] = queue[1:]
	}
	return page, nil
}

const listingHTML = `<html><body>
<a href="/es/luminata-disco/events/fiesta-remember-K7HZ"
   aria-label="Evento: FIESTA REMEMBER. Edad mínima: 18 años. Fecha: 10 de enero. Horario: de 23:00 a 06:00">
  <img src="https://imagedelivery.fourvenues.com/remember.jpg"/>
</a>
<a href="/es/luminata-disco/events/fiesta-remember-K7HZ?utm_source=home"
   aria-label="Evento: FIESTA REMEMBER. Edad mínima: 18 años. Fecha: 10 de enero. Horario: de 23:00 a 06:00"></a>
<a href="/es/luminata-disco/events/nochevieja-XQ2P"
   aria-label="Evento: NOCHEVIEJA. Fecha: 31 de diciembre. Horario: de 23:30 a 07:00"></a>
</body></html>`

const detailMarkdown = `# FIESTA REMEMBER

La mejor fiesta remember de Murcia vuelve con los himnos de los 90 y 2000.

- Entrada Vip
- Entrada General
`

const detailRawHTML = `<html><head>
<script type="application/ld+json">
{"@type":"Event","offers":[
 {"@type":"Offer","name":"ENTRADA VIP","price":"15","url":"https://x/tickets/vip1234567890abcdefghij"},
 {"@type":"Offer","name":"ENTRADA GENERAL","price":"8","url":"https://x/tickets/gen1234567890abcdefghij"}
]}
</script></head><body></body></html>`

func testScraper(t *testing.T, f fetch.Fetcher, venues ...venue.Venue) *Scraper {
	t.Helper()
	return New(f, venues, nil)
}

func luminata() venue.Venue {
	vs := venue.BySlug(venue.Defaults())
	return vs["luminata-disco"]
}

func salaRem() venue.Venue {
	vs := venue.BySlug(venue.Defaults())
	return vs["sala-rem"]
}

func TestRunEndToEnd(t *testing.T) {
	v := luminata()
	f := &stubFetcher{pages: map[string][]*fetch.Result{
		v.EventsURL(): {{HTML: listingHTML}},
		"https://site.fourvenues.com/es/luminata-disco/events/fiesta-remember-K7HZ": {
			{HTML: detailRawHTML, RawHTML: detailRawHTML, Markdown: detailMarkdown},
		},
		"https://site.fourvenues.com/es/luminata-disco/events/nochevieja-XQ2P": {
			{HTML: "<html><body><p>Gran fiesta</p></body></html>"},
		},
	}}

	result, err := testScraper(t, f, v).Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Zero(t, result.Failures)

	first := result.Records[0]
	require.Equal(t, "FIESTA REMEMBER", first.Name)
	require.Equal(t, "K7HZ", first.Code)
	require.True(t, strings.HasSuffix(first.Date, "-01-10"))
	require.Equal(t, "23:00", first.StartTime)
	require.Equal(t, 18, first.MinAge)
	require.Equal(t, "La mejor fiesta remember de Murcia vuelve con los himnos de los 90 y 2000.", first.Description)
	require.Equal(t, []string{"Remember"}, first.Tags)
	require.Equal(t, "anchor-label", first.Source)
	require.Equal(t, "Luminata Disco", first.Venue.Name)

	// Markdown labels with schema prices and URLs.
	require.Len(t, first.Tickets, 2)
	require.Equal(t, "Entrada Vip", first.Tickets[0].Label)
	require.Equal(t, "15", first.Tickets[0].Price)
	require.Contains(t, first.Tickets[0].PurchaseURL, "/tickets/")

	// The second event's detail page had no tickets: the fallback kicks in.
	second := result.Records[1]
	require.Equal(t, "NOCHEVIEJA", second.Name)
	require.Len(t, second.Tickets, 1)
	require.Equal(t, "Entrada General", second.Tickets[0].Label)
	require.Equal(t, "07:00", second.EndTime)
}

func TestRunDropsEventsWithoutDetailContent(t *testing.T) {
	v := luminata()
	f := &stubFetcher{
		pages: map[string][]*fetch.Result{
			v.EventsURL(): {{HTML: listingHTML}},
			// XQ2P's detail page renders as an empty shell; K7HZ's fetch
			// fails outright via the errs map below.
			"https://site.fourvenues.com/es/luminata-disco/events/nochevieja-XQ2P": {{}},
		},
		errs: map[string]error{
			"https://site.fourvenues.com/es/luminata-disco/events/fiesta-remember-K7HZ": fmt.Errorf("upstream 502"),
		},
	}

	result, err := testScraper(t, f, v).Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	// Coded venues drop no-content events too, not just the codeless ones.
	require.Empty(t, result.Records)
	require.Zero(t, result.Failures)
}

func TestRunSkipDetails(t *testing.T) {
	v := luminata()
	f := &stubFetcher{pages: map[string][]*fetch.Result{
		v.EventsURL(): {{HTML: listingHTML}},
	}}

	result, err := testScraper(t, f, v).Run(context.Background(), RunOptions{SkipDetails: true})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	// Only the listing fetch happened.
	require.Len(t, f.calls, 1)
}

func TestRunRetriesEmptyListing(t *testing.T) {
	v := salaRem()
	f := &stubFetcher{pages: map[string][]*fetch.Result{
		v.EventsURL(): {
			{HTML: "<html><body>cargando</body></html>"},
			{HTML: `<html><body>
				<a href="/es/sala-rem/events/fiesta--10-01-2026-ZZTOP"
				   aria-label="Evento: FIESTA. Fecha: 10 de enero. Horario: de 23:00 a 06:00"></a>
			</body></html>`},
		},
	}}

	result, err := testScraper(t, f, v).Run(context.Background(), RunOptions{SkipDetails: true})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, []string{v.EventsURL(), v.EventsURL()}, f.calls)
}

func TestRunContentGateDropsEmptyCodelessEvents(t *testing.T) {
	v := salaRem()
	f := &stubFetcher{pages: map[string][]*fetch.Result{
		v.EventsURL(): {{HTML: `<html><body>
			<a href="/es/sala-rem/events/fiesta--10-01-2026-ZZTOP"
			   aria-label="Evento: FIESTA. Fecha: 10 de enero. Horario: de 23:00 a 06:00"></a>
		</body></html>`}},
		// The detail page renders, but with no description, image or
		// tickets: a phantom listing entry.
		"https://site.fourvenues.com/es/sala-rem/events/fiesta--10-01-2026-ZZTOP": {
			{HTML: "<html><body><nav>Inicio</nav></body></html>"},
		},
	}}

	result, err := testScraper(t, f, v).Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.Empty(t, result.Records)
}

func TestRunVenueFailureDoesNotAbort(t *testing.T) {
	good, bad := luminata(), salaRem()
	f := &stubFetcher{
		pages: map[string][]*fetch.Result{
			good.EventsURL(): {{HTML: listingHTML}},
		},
		errs: map[string]error{bad.EventsURL(): fmt.Errorf("upstream 502")},
	}

	result, err := testScraper(t, f, good, bad).Run(context.Background(), RunOptions{SkipDetails: true})
	require.NoError(t, err)
	require.Equal(t, 1, result.Failures)
	require.Len(t, result.Records, 2)
}

func TestRunAllVenuesFailed(t *testing.T) {
	v := luminata()
	f := &stubFetcher{errs: map[string]error{v.EventsURL(): fmt.Errorf("upstream 502")}}

	_, err := testScraper(t, f, v).Run(context.Background(), RunOptions{})
	require.Error(t, err)
}

func TestRunURLFilter(t *testing.T) {
	a, b := luminata(), salaRem()
	f := &stubFetcher{pages: map[string][]*fetch.Result{
		a.EventsURL(): {{HTML: listingHTML}},
	}}

	result, err := testScraper(t, f, a, b).Run(context.Background(), RunOptions{
		URLs:        []string{a.EventsURL()},
		SkipDetails: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Venues)
	require.Len(t, f.calls, 1)

	_, err = testScraper(t, f, a, b).Run(context.Background(), RunOptions{
		URLs: []string{"https://site.fourvenues.com/es/unknown/events"},
	})
	require.Error(t, err)
}
