// Package metrics exposes simulation progress as Prometheus metrics. The
// Collector is an engine.Observer; attach it to a run and serve its
// registry with promhttp.
package metrics
