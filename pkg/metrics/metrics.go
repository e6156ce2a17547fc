// Package metrics provides the centralized Prometheus metrics registry for
// the Monnit export tool. All metrics are defined in their respective
// packages (monnit, sequencer) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the export tool.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/monnit):
//   - monnit_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - monnit_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - monnit_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/monnit):
//   - monnit_retries_total{error_class} (Counter): Retry attempts by error class
//   - monnit_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Sequencer Metrics (pkg/sequencer):
//   - sequencer_work_items_total{outcome} (Counter): Work items processed, by ok/failed outcome
//   - sequencer_pacing_wait_seconds (Histogram): Pacing wait enforced between requests
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(monnit_errors_total[5m])
//
//   # Work Item Failure Ratio
//   sum(rate(sequencer_work_items_total{outcome="failed"}[1h])) /
//   sum(rate(sequencer_work_items_total[1h]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(monnit_request_duration_seconds_bucket[5m]))
