// Package metrics records crawl counters with Prometheus client types.
//
// A Recorder owns its own registry rather than the global default one, so a
// CLI run can dump exactly the crawl's series to a node_exporter textfile and
// tests can assert on fresh counters. All methods are safe on a nil Recorder.
package metrics
