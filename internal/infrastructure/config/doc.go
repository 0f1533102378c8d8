// Package config provides 12-factor configuration management for the webterm server.
//
// Configuration is loaded from environment variables with sensible defaults.
// A .env file in the process working directory is read first when present;
// variables already set in the environment win. CLI flags can override
// environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: listen address, shutdown deadline, websocket frame limit
//   - Workspace: session root directory, static and log directories
//   - Shell: default interpreter, catalog extension file, probe cache TTL
//   - Logging: Log level, output format and log file
//   - RateLimit: Per-IP rate limiting for one-shot command execution
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	if err := cfg.Resolve(); err != nil {
//		return err
//	}
//	fmt.Printf("Serving %s on %s\n", cfg.Workspace.WorkDir, cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT, WS_READ_LIMIT
//   - WORK_DIR, PUBLIC_DIR, LOGS_DIR
//   - DEFAULT_SHELL, SHELL_CATALOG, SHELL_PROBE_TTL
//   - LOG_LEVEL, LOG_DEV, LOG_FILE
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
