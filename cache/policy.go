package cache

import "time"

// Policy configures report caching.
type Policy struct {
	// TTL is how long a report stays fresh. Zero disables caching.
	TTL time.Duration

	// MaxTTL clamps TTL. Zero means no clamp.
	MaxTTL time.Duration
}

// DefaultPolicy caches for one second, long enough to absorb bursts of
// probes from several replicas of a load balancer.
func DefaultPolicy() Policy {
	return Policy{
		TTL:    time.Second,
		MaxTTL: time.Minute,
	}
}

// Enabled reports whether the policy caches anything.
func (p Policy) Enabled() bool {
	return p.EffectiveTTL() > 0
}

// EffectiveTTL returns TTL clamped to MaxTTL.
func (p Policy) EffectiveTTL() time.Duration {
	ttl := p.TTL
	if ttl < 0 {
		return 0
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
