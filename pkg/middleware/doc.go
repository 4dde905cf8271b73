// Package middleware provides net/http middleware for the mcwire debug
// server.
//
// This package includes:
//   - OpenTelemetry request tracing
//   - Prometheus request and WebSocket session metrics
//
// Both are plain func(http.Handler) http.Handler values and mount on a chi
// router:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r := chi.NewRouter()
//	r.Use(middleware.OpenTelemetry(), middleware.Prometheus(m))
//
// Routes are labelled by their chi pattern rather than the raw path, so
// metric cardinality does not grow with client input.
//
// # Context Propagation
//
// The tracing middleware stores its span in the request context. Handlers
// that open a transport connection pass r.Context() on, so frame spans
// recorded by pkg/transport nest under the request span.
package middleware
