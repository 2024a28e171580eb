// Package server exposes the report pipeline over a small read-only JSON API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [BasicRouter] registers method-qualified [http.ServeMux] patterns, so a request with the wrong method gets a 405.
//
// [Middleware] added first runs outermost. [Logging] and [Recover] are the two the API uses.
//
// # Endpoints
//
//	GET /healthz            liveness
//	GET /api/report?count=N build a report; format=json|csv|markdown|text, default json
//	GET /api/runs?limit=N   recorded runs, newest first
//	GET /api/cache/{mbid}   raw cached MusicBrainz body
//
// Report builds are serialized by [ReportHandler] so that only one pipeline talks to MusicBrainz at a time.
//
// # Handler Interface
//
// Custom handlers implement [Handler], which adds Routes to the stdlib handler interface
// so a handler carries its own route definitions.
package server
