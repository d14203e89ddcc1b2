package pagination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func intPtr(n int) *int { return &n }

func TestCollect_SinglePage(t *testing.T) {
	calls := 0
	items, err := Collect(context.Background(), 0, func(_ context.Context, page int) (Page, error) {
		calls++
		return Page{Items: []map[string]any{{"id": 1}, {"id": 2}}}, nil
	})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch calls = %d, want 1", calls)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
}

func TestCollect_ConcatenatesInFetchOrder(t *testing.T) {
	pages := map[int]Page{
		1: {Items: []map[string]any{{"id": 1}, {"id": 2}}, Next: intPtr(2)},
		2: {Items: []map[string]any{{"id": 3}}, Next: intPtr(3)},
		3: {Items: []map[string]any{{"id": 4}, {"id": 5}}},
	}

	var fetched []int
	items, err := Collect(context.Background(), 0, func(_ context.Context, page int) (Page, error) {
		fetched = append(fetched, page)
		return pages[page], nil
	})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(fetched) != 3 || fetched[0] != 1 || fetched[1] != 2 || fetched[2] != 3 {
		t.Errorf("fetched pages = %v, want [1 2 3]", fetched)
	}
	if len(items) != 5 {
		t.Fatalf("len(items) = %d, want 5", len(items))
	}
	for i, item := range items {
		if item["id"] != i+1 {
			t.Errorf("items[%d][id] = %v, want %d", i, item["id"], i+1)
		}
	}
}

func TestCollect_EmptyPage(t *testing.T) {
	items, err := Collect(context.Background(), 0, func(_ context.Context, page int) (Page, error) {
		return Page{}, nil
	})
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestCollect_AbortDiscardsPartialResults(t *testing.T) {
	pageErr := errors.New("page fetch failed")
	calls := 0
	items, err := Collect(context.Background(), 0, func(_ context.Context, page int) (Page, error) {
		calls++
		if page == 2 {
			return Page{}, pageErr
		}
		return Page{Items: []map[string]any{{"id": page}}, Next: intPtr(page + 1)}, nil
	})

	if !errors.Is(err, pageErr) {
		t.Errorf("Collect() error = %v, want %v", err, pageErr)
	}
	if items != nil {
		t.Errorf("items = %v, want nil after abort", items)
	}
	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2 (no fetches after the failed page)", calls)
	}
}

func TestCollect_DelayBetweenFetchesOnly(t *testing.T) {
	const delay = 30 * time.Millisecond

	start := time.Now()
	var firstFetch time.Time
	_, err := Collect(context.Background(), delay, func(_ context.Context, page int) (Page, error) {
		if page == 1 {
			firstFetch = time.Now()
		}
		if page < 3 {
			return Page{Items: []map[string]any{{"id": page}}, Next: intPtr(page + 1)}, nil
		}
		return Page{Items: []map[string]any{{"id": page}}}, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if wait := firstFetch.Sub(start); wait >= delay {
		t.Errorf("first fetch waited %v, want immediate start", wait)
	}
	// 3 pages means 2 enforced gaps.
	if elapsed < 2*delay {
		t.Errorf("elapsed = %v, want at least %v", elapsed, 2*delay)
	}
}

func TestCollect_ContextCancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items, err := Collect(ctx, 50*time.Millisecond, func(_ context.Context, page int) (Page, error) {
		if page == 1 {
			cancel()
		}
		return Page{Items: []map[string]any{{"id": page}}, Next: intPtr(page + 1)}, nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
	if items != nil {
		t.Errorf("items = %v, want nil after cancellation", items)
	}
}

func TestCollect_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	// For any split of a sequence into pages, collecting returns exactly the
	// original sequence.
	properties.Property("collected items equal the concatenated pages", prop.ForAll(
		func(sizes []int) bool {
			if len(sizes) == 0 {
				sizes = []int{0}
			}

			var want []int
			pages := make([]Page, len(sizes))
			n := 0
			for i, size := range sizes {
				items := make([]map[string]any, size)
				for j := range items {
					items[j] = map[string]any{"n": n}
					want = append(want, n)
					n++
				}
				pages[i] = Page{Items: items}
				if i+1 < len(sizes) {
					pages[i].Next = intPtr(i + 2)
				}
			}

			got, err := Collect(context.Background(), 0, func(_ context.Context, page int) (Page, error) {
				return pages[page-1], nil
			})
			if err != nil {
				return false
			}
			if len(got) != len(want) {
				return false
			}
			for i, item := range got {
				if item["n"] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
