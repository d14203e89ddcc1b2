package pagination

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"testmo-mcp-server/pkg/ratelimit"
)

// Prometheus metrics for pagination operations.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "testmo_pages_fetched_total",
		Help: "Total pages fetched by auto-pagination",
	})

	paginationAbortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "testmo_pagination_aborts_total",
		Help: "Total pagination runs aborted by a page error",
	})
)

// Page is one fetched page. Next carries the number of the page that
// follows, or nil when this page is the last.
type Page struct {
	Items []map[string]any
	Next  *int
}

// FetchFunc fetches a single page by number. Page numbers start at 1.
type FetchFunc func(ctx context.Context, page int) (Page, error)

// Collect fetches every page sequentially, starting at page 1, and returns
// the concatenated items in fetch order. The delay separates consecutive
// fetches; the first fetch starts immediately. Any page error aborts the
// run and discards the items collected so far.
func Collect(ctx context.Context, delay time.Duration, fetch FetchFunc) ([]map[string]any, error) {
	pacer := ratelimit.NewPacer(delay)
	items := make([]map[string]any, 0)

	page := 1
	for {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}

		p, err := fetch(ctx, page)
		if err != nil {
			paginationAbortsTotal.Inc()
			log.Warn().
				Err(err).
				Int("page", page).
				Msg("Page fetch failed, aborting pagination")
			return nil, err
		}
		pagesFetchedTotal.Inc()

		items = append(items, p.Items...)
		if p.Next == nil {
			log.Debug().
				Int("pages", page).
				Int("items", len(items)).
				Msg("Pagination complete")
			return items, nil
		}
		page = *p.Next
	}
}
