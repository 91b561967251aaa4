package app

import (
	"context"
	"fmt"

	"github.com/jonwraymond/healthkit/checks"
	"github.com/jonwraymond/healthkit/health"
	"github.com/jonwraymond/healthkit/internal/config"
	"github.com/jonwraymond/healthkit/resilience"
)

// buildChecker turns one configured check into a Checker. The returned
// release func frees any client it opened and is never nil.
func buildChecker(ctx context.Context, cc config.CheckConfig) (health.Checker, func(), error) {
	noop := func() {}

	switch cc.Type {
	case config.TypeHTTP:
		var opts []checks.HTTPOption
		if len(cc.ExpectStatus) > 0 {
			opts = append(opts, checks.WithExpectStatus(cc.ExpectStatus...))
		}
		return checks.HTTPGet(cc.URL, opts...), noop, nil

	case config.TypeTCP:
		return checks.TCPDial(cc.Addr), noop, nil

	case config.TypePostgres:
		pool, err := checks.NewPostgresPool(ctx, cc.DSN)
		if err != nil {
			return nil, noop, err
		}
		return checks.Postgres(pool), pool.Close, nil

	case config.TypeRedis:
		client := checks.NewRedisClient(cc.Addr, cc.Password, cc.DB)
		return checks.Redis(client), func() { _ = client.Close() }, nil

	case config.TypeKafka:
		return checks.Kafka(cc.Brokers...), noop, nil

	case config.TypeMemory:
		return checks.Memory(checks.MemoryConfig{Threshold: cc.Threshold, Limit: cc.Limit}), noop, nil
	}
	return nil, noop, fmt.Errorf("%w: unknown check type %q", config.ErrInvalid, cc.Type)
}

func checkOptions(cc config.CheckConfig) []health.CheckOption {
	var opts []health.CheckOption
	if cc.Optional {
		opts = append(opts, health.Optional())
	}
	if cc.Timeout > 0 {
		opts = append(opts, health.Timeout(cc.Timeout))
	}
	if cc.Breaker != nil {
		opts = append(opts, health.Breaker(resilience.CircuitBreakerConfig{
			MaxFailures: cc.Breaker.MaxFailures,
			Cooldown:    cc.Breaker.Cooldown,
		}))
	}
	return opts
}
