// Package checks provides ready-made health.Checker implementations for
// common dependencies: process memory, HTTP endpoints, TCP services,
// PostgreSQL, Redis and Kafka.
//
// Every checker is safe for concurrent use and honors context cancellation
// so that registry and request timeouts bound it.
package checks
