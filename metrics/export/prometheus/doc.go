// Package prometheus provides Prometheus collectors for goVault metrics.
//
// [NewPrometheusExporter] accepts an [goVault.Engine] and exposes an [http.Handler]
// that renders all goVault counters and histograms in Prometheus text exposition format.
// Counter names are prefixed govault_*_total; the single histogram is
// govault_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
