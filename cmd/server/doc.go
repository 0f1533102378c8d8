// Package main is the entry point for the webterm server.
//
// webterm exposes the host's command interpreters to a browser. Each
// WebSocket connection is a terminal session bound to one interpreter;
// every command runs as a fresh process in the session's working directory
// and the decoded, escape-free output is sent back as one text frame.
//
// Configuration:
//   - Environment variables, optionally from a .env file
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Serve ./public and run commands in /srv/work
//	./server -port 8000 -workdir /srv/work
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown; live sessions are closed
package main
