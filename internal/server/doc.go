// Package server exposes events, playlists and scanner links over a JSON REST API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps the whole mux in reverse order (last added executes first), so CORS preflight
// requests and unmatched paths pass through logging and metrics too.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /api/events/{id}/songs").
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [LineupHandler] is the API: playlist reads and position submissions, server-side moves, batch
// scanner links with per-scanner results, and server-side scanner sync.
//
// # Errors
//
// Failures are written as {"error": message, "code": code}. Codes and statuses:
//   - not_found : 404
//   - invalid_input : 400
//   - already_linked, stale_snapshot : 409
//   - internal : 500
//
// # Metrics
//
// [Metrics] records request counts and latencies per route pattern plus move and link outcomes,
// served in Prometheus exposition format on /metrics.
package server
