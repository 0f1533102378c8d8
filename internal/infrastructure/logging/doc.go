// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Output goes to stdout and, optionally, to a file inside the logs
// directory that the server exposes under /logs.
//
// Example Usage:
//
//	cfg, err := logging.DefaultConfig().WithFile("/srv/work/logs/webterm.log")
//	logger, err := logging.New(cfg)
//	logger.Info("Server starting", zap.String("port", "8000"))
//	logger.Error("Failed to upgrade", zap.Error(err))
package logging
