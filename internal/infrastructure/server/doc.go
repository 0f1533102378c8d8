// Package server assembles the terminal server.
//
// It builds the logger from configuration, the shell registry with its
// version prober, the command executor and the session manager, and mounts
// them on a gin router behind the request ID, logging, metrics, CORS and
// rate limiting middleware.
//
// Routes:
//   - GET  /status, /health, /shells, /sessions, /sessions/:id
//   - POST /execute, /client-logs
//   - GET  /socket, /socket/:shell   WebSocket terminal sessions
//   - GET  /metrics                  Prometheus exposition
//   - GET  /logs/*                   files under the logs directory
//   - anything else                  static files from the public directory
//
// Example Usage:
//
//	cfg, _ := config.Load()
//	if err := cfg.Resolve(); err != nil {
//		log.Fatal(err)
//	}
//	srv, err := server.NewServer(cfg)
//	go srv.Run()
//	...
//	srv.Shutdown(ctx)
package server
