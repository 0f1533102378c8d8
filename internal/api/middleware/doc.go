// Package middleware provides the HTTP middleware of the terminal server.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting with idle cleanup
//   - RequestID: X-Request-ID propagation
//   - Logger: One zap line per request, level chosen by status
//
// Example Usage:
//
//	router.Use(middleware.RequestID(), middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.POST("/execute", middleware.RateLimit(middleware.DefaultRateLimitConfig()), handler)
package middleware
