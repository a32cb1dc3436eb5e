// Package api adapts HTTP requests to the task workflows. Handlers decode
// and validate JSON, call the service layer, and translate service errors
// into status codes and sanitized messages. Routing and middleware wiring
// live in cmd/server.
package api
