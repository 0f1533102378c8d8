/*
Package monitoring provides Prometheus metrics for the terminal server.

# Overview

Each Metrics value owns a private registry. The collector implements the
recorder interfaces of the terminal executor and the session manager, so
command outcomes, version probes, cd requests and session lifetimes are
counted where they happen.

# Metrics

  - webterm_http_*: request count, latency and sizes by route
  - webterm_sessions_*: live sessions, sessions started per shell, lifetime
  - webterm_commands_total, webterm_command_duration_seconds: by shell and
    outcome (ok, exit_error, launch_error)
  - webterm_version_probes_total, webterm_directory_changes_total
  - webterm_ws_connections, webterm_ws_messages_total
  - webterm_uptime_seconds plus the Go and process collectors

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	executor := terminal.NewExecutor(logger, metrics)
	manager := session.NewManager(logger, metrics)
*/
package monitoring
