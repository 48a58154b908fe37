// Package metrics provides the centralized Prometheus metrics registry for
// the market analyzer. All metrics are defined in their respective packages
// (market, ratelimit) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the analyzer.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - market_ratelimit_tokens (Gauge): Tokens currently available in the bucket
//   - market_ratelimit_wait_seconds (Histogram): Time callers spent blocked waiting for tokens
//   - market_ratelimit_takes_total (Counter): Tokens handed out
//
// Request Metrics (pkg/market):
//   - market_requests_total{auth_mode, result} (Counter): Upstream requests by credential placement and outcome
//   - market_request_duration_seconds (Histogram): Upstream request duration
//   - market_errors_total{class} (Counter): Errors by class (auth_mode, transient, fatal, network)
//
// Retry Metrics (pkg/market):
//   - market_retries_total (Counter): Retry cycles entered
//   - market_retry_backoff_seconds (Histogram): Backoff duration before each retry cycle
//   - market_retry_exhausted_total (Counter): Items that exhausted all retry cycles
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(market_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(market_request_duration_seconds_bucket[5m]))
//
//   # Rate Limiter Pressure
//   histogram_quantile(0.95, rate(market_ratelimit_wait_seconds_bucket[5m]))
//
//   # Retry Exhaustion Rate
//   rate(market_retry_exhausted_total[5m]) / rate(market_requests_total[5m])
