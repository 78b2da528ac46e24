// Package telemetry exports reconciliation frames to Prometheus and
// OpenTelemetry.
//
// Both exporters implement recon.Observer and are attached when the tree is
// created:
//
//	metrics := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	tracer := telemetry.NewTracer(telemetry.WithTracerName("myapp-ui"))
//
//	tree := recon.New[Params](
//	    recon.WithObserver(metrics),
//	    recon.WithObserver(tracer),
//	)
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Prometheus Metrics
//
//   - retree_frames_total: frames finished, by status
//   - retree_frame_duration_seconds: declaration pass duration
//   - retree_live_nodes: live nodes after the last frame
//   - retree_nodes_inserted_total, retree_twins_total, retree_nodes_pruned_total
//   - retree_dirty_records_total, retree_cosmetic_updates_total
//
// # Tracing
//
// The tracer opens one span per frame, named "retree.frame", and records the
// frame's statistics as attributes when it ends. The tracer uses the global
// OpenTelemetry tracer provider unless one is passed with WithTracerProvider.
package telemetry
