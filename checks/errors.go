package checks

import "errors"

var (
	// ErrUnexpectedStatus indicates an HTTP probe got a status it does not accept.
	ErrUnexpectedStatus = errors.New("checks: unexpected HTTP status")

	// ErrMemoryCritical indicates heap usage crossed the critical threshold.
	ErrMemoryCritical = errors.New("checks: memory usage critical")

	// ErrNoBrokers indicates a Kafka check was built without brokers.
	ErrNoBrokers = errors.New("checks: no kafka brokers configured")

	// ErrUnexpectedReply indicates a ping returned something other than PONG.
	ErrUnexpectedReply = errors.New("checks: unexpected ping reply")
)
