// Package metrics exports recommendation activity to Prometheus.
//
// PrometheusMonitor implements recommend.Monitor. Register it on a
// dedicated registry and serve that registry with promhttp:
//
//	reg := prometheus.NewRegistry()
//	monitor := metrics.NewPrometheusMonitor(reg)
//	r, err := recommend.NewRecommender(idx, embedder, recommend.WithMonitor(monitor))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics
