// Package metrics exposes build observability hooks.
//
// Components receive a Recorder through their constructors. NoopRecorder is
// the default, so code never checks for nil; PrometheusRecorder is swapped in
// when metrics are enabled in configuration and is served by the preview
// server on /metrics.
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	exec, err := chain.New(list, formatter, acc, chain.WithRecorder(rec))
package metrics
