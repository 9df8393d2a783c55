// Package logging provides structured logging for the Cocoro client.
//
// This package wraps a zap logger with convenience functions for the logging
// patterns used throughout the client: HTTP exchanges with the vendor cloud,
// queued property updates and control submissions.
//
// # Log Levels
//
//   - Debug: raw composite codes, queued updates, request/response pairs
//   - Info: logins, submissions, bridge lifecycle
//   - Warn: retries, verification mismatches, rollbacks
//   - Error: failed submissions, broker failures
//
// # Structured Logging
//
//	logging.Info("Device refreshed",
//	    zap.Int64("device_id", 12345),
//	    zap.Int("status_count", 14),
//	)
//
// # Configuration
//
// Logging is silent unless a level is given or COCORO_LOG_LEVEL is set:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// All logging functions are safe for concurrent use.
package logging
