// Package batch splits large write sets into chunks the Testmo API accepts
// and submits them sequentially.
//
// Chunk submission is best-effort: a failed chunk is recorded and the
// remaining chunks are still written. The delay between consecutive chunk
// writes keeps the request rate within the service's implicit limits.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"testmo-mcp-server/pkg/ratelimit"
)

// Prometheus metrics for batch operations.
var (
	batchChunksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testmo_batch_chunks_total",
		Help: "Total batch chunks by outcome",
	}, []string{"outcome"})

	batchItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "testmo_batch_items_total",
		Help: "Total items submitted through batch writes",
	})
)

// WriteFunc submits one chunk of items.
type WriteFunc func(ctx context.Context, chunk []map[string]any) error

// ChunkError records a failed chunk. Chunk numbers start at 1.
type ChunkError struct {
	Chunk int
	Size  int
	Err   error
}

// Error implements the error interface.
func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d items): %v", e.Chunk, e.Size, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Outcome reports what a batch write accomplished.
type Outcome struct {
	Submitted int
	Chunks    int
	Errors    []*ChunkError
}

// Err returns a PartialFailureError when any chunk failed, nil otherwise.
func (o Outcome) Err() error {
	if len(o.Errors) == 0 {
		return nil
	}
	return &PartialFailureError{Outcome: o}
}

// PartialFailureError reports a batch write in which some chunks failed.
type PartialFailureError struct {
	Outcome Outcome
}

// Error implements the error interface.
func (e *PartialFailureError) Error() string {
	msgs := make([]string, len(e.Outcome.Errors))
	for i, ce := range e.Outcome.Errors {
		msgs[i] = ce.Error()
	}
	return fmt.Sprintf("batch write: %d of %d chunks failed: %s",
		len(e.Outcome.Errors), e.Outcome.Chunks, strings.Join(msgs, "; "))
}

// Write splits items into chunks of at most chunkSize, preserving order, and
// submits them one at a time with the delay between consecutive writes. The
// returned error is non-nil only when ctx ends between chunks; individual
// chunk failures are reported through the Outcome and do not stop the run.
func Write(ctx context.Context, items []map[string]any, chunkSize int, delay time.Duration, write WriteFunc) (Outcome, error) {
	if chunkSize <= 0 {
		chunkSize = 1
	}

	pacer := ratelimit.NewPacer(delay)
	outcome := Outcome{Submitted: len(items)}

	for start := 0; start < len(items); start += chunkSize {
		if err := pacer.Wait(ctx); err != nil {
			return outcome, err
		}

		end := start + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]
		outcome.Chunks++

		if err := write(ctx, chunk); err != nil {
			batchChunksTotal.WithLabelValues("error").Inc()
			outcome.Errors = append(outcome.Errors, &ChunkError{
				Chunk: outcome.Chunks,
				Size:  len(chunk),
				Err:   err,
			})
			log.Warn().
				Err(err).
				Int("chunk", outcome.Chunks).
				Int("size", len(chunk)).
				Msg("Batch chunk failed")
			continue
		}

		batchChunksTotal.WithLabelValues("ok").Inc()
		batchItemsTotal.Add(float64(len(chunk)))
	}

	log.Info().
		Int("items", outcome.Submitted).
		Int("chunks", outcome.Chunks).
		Int("failed_chunks", len(outcome.Errors)).
		Msg("Batch write complete")

	return outcome, nil
}
