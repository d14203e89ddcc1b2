// Package pagination provides sequential auto-pagination for Testmo list
// endpoints.
//
// Testmo signals further pages through a non-null next_page field in the
// list envelope. This package walks pages one at a time with a fixed delay
// between consecutive fetches, which keeps request bursts within the
// service's implicit rate limits.
//
// Example usage:
//
//	items, err := pagination.Collect(ctx, 500*time.Millisecond,
//		func(ctx context.Context, page int) (pagination.Page, error) {
//			return fetchFolderPage(ctx, projectID, page)
//		})
//
// Collect:
//   - Fetches pages sequentially starting at page 1
//   - Applies the delay between fetches, never before the first
//   - Concatenates items in fetch order
//   - Aborts on the first page error and discards partial results
package pagination
