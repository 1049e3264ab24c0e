// Package api exposes the rigwire analyses over HTTP.
//
// # Endpoints
//
//	GET  /health        liveness and version
//	POST /v1/power      power report of a layout
//	POST /v1/patch      patch validation of a layout
//	POST /v1/diagram    DOT or SVG diagram (?format=svg|dot&detailed&pinned&status=&kinds=)
//	POST /v1/route      replay a routing gesture and return the produced wires
//	GET  /metrics       Prometheus metrics, when a metrics handler is set
//
// Analysis requests carry the layout document and, optionally, the
// equipment catalog as JSON:
//
//	{"layout": {...}, "catalog": [...]}
//
// Without a catalog the server's default catalog is used. Responses of
// unchanged layouts come from the runner's cache.
//
// # Errors
//
// Failures are returned as {"error": {"code": "INVALID_LAYOUT", "message":
// "..."}} with the HTTP status of the code.
package api
