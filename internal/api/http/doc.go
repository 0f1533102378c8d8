// Package http provides the REST handlers of the terminal server.
//
// Endpoints:
//   - GET  /status      service status
//   - GET  /health      uptime, shells, session stats and a metrics snapshot
//   - GET  /shells      JSON array of interpreters whose version probe succeeds
//   - POST /execute     body is one command; ?shell= picks the interpreter;
//     the reply is the normalized output as text/plain
//   - GET  /sessions    live WebSocket sessions
//   - GET  /sessions/:id
//   - POST /client-logs log entries from the browser client
package http
