package checks

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/jonwraymond/healthkit/health"
)

// KafkaChecker passes when any broker accepts a connection.
type KafkaChecker struct {
	brokers []string
	dialer  *kafka.Dialer
}

// Kafka checks the given broker addresses.
func Kafka(brokers ...string) *KafkaChecker {
	return &KafkaChecker{brokers: brokers, dialer: kafka.DefaultDialer}
}

// WithDialer replaces the dialer, for TLS or SASL clusters.
func (k *KafkaChecker) WithDialer(d *kafka.Dialer) *KafkaChecker {
	if d != nil {
		k.dialer = d
	}
	return k
}

// Check dials brokers in order until one answers.
func (k *KafkaChecker) Check(ctx context.Context) error {
	if len(k.brokers) == 0 {
		return ErrNoBrokers
	}

	var errs []error
	for _, broker := range k.brokers {
		conn, err := k.dialer.DialContext(ctx, "tcp", broker)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", broker, err))
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("all kafka brokers unreachable: %w", errors.Join(errs...))
}

var _ health.Checker = (*KafkaChecker)(nil)
