// Package metrics provides the centralized Prometheus metrics registry for
// the Testmo client. All metrics are defined in their respective packages
// (client, pagination, batch, mcp) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the Testmo client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - testmo_requests_total{endpoint, method, status} (Counter): Total requests by endpoint, method and HTTP status
//   - testmo_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - testmo_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, validation)
//
// Pagination Metrics (pkg/pagination):
//   - testmo_pages_fetched_total (Counter): Pages fetched by auto-pagination
//   - testmo_pagination_aborts_total (Counter): Pagination runs aborted by a page error
//
// Batch Metrics (pkg/batch):
//   - testmo_batch_chunks_total{outcome} (Counter): Batch chunks by outcome (ok, error)
//   - testmo_batch_items_total (Counter): Items submitted through batch writes
//
// Tool Metrics (internal/mcp):
//   - testmo_tool_calls_total{tool, outcome} (Counter): Tool invocations by outcome (ok, error)
//   - testmo_tool_call_duration_seconds{tool} (Histogram): Tool call duration
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(testmo_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(testmo_request_duration_seconds_bucket[5m]))
//
//   # Batch Chunk Failure Rate
//   rate(testmo_batch_chunks_total{outcome="error"}[5m]) /
//   rate(testmo_batch_chunks_total[5m])
//
//   # Slowest Tools
//   topk(5, histogram_quantile(0.95, rate(testmo_tool_call_duration_seconds_bucket[5m])))
