package health

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/healthkit/cache"
	"github.com/jonwraymond/healthkit/observe"
	"github.com/jonwraymond/healthkit/resilience"
)

const reportCacheKey = "health:report"

// DefaultReportTimeout bounds a shared report run.
const DefaultReportTimeout = 30 * time.Second

// entry is one registered check. It is never mutated after Add.
type entry struct {
	name     string
	checker  Checker
	optional bool
	timeout  time.Duration
	breaker  *resilience.CircuitBreaker
}

// Registry holds named checks in registration order.
//
// Registration is expected at setup time, but every method is safe for
// concurrent use: Run works on a snapshot taken under a read lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	gen     uint64 // bumped by Add and Remove

	timeout       time.Duration
	reportTimeout time.Duration
	logger      observe.Logger
	instr       *observe.Instrumentation
	reportCache cache.Cache
	cachePolicy cache.Policy

	flight singleflight.Group
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeout sets the default per-check timeout. Zero, the default, lets
// checks run unbounded.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// WithReportTimeout bounds the run behind Report. The run is shared by
// concurrent callers, so it is detached from their contexts and ends at
// this deadline instead. Zero removes the bound.
func WithReportTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.reportTimeout = d
	}
}

// WithLogger logs check failures at warn and panics at error.
func WithLogger(l observe.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithInstrumentation traces and meters every check execution.
func WithInstrumentation(i *observe.Instrumentation) Option {
	return func(r *Registry) {
		r.instr = i
	}
}

// WithReportCache serves Report from c while the cached copy is younger
// than the policy TTL. Registering or removing a check invalidates it.
func WithReportCache(c cache.Cache, p cache.Policy) Option {
	return func(r *Registry) {
		r.reportCache = c
		r.cachePolicy = p
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries:       make(map[string]*entry),
		logger:        observe.NopLogger(),
		reportTimeout: DefaultReportTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckOption configures a single registration.
type CheckOption func(*entry)

// Optional marks a check as non-critical: its failure degrades the report
// rather than failing it.
func Optional() CheckOption {
	return func(e *entry) {
		e.optional = true
	}
}

// Timeout overrides the registry timeout for this check.
func Timeout(d time.Duration) CheckOption {
	return func(e *entry) {
		e.timeout = d
	}
}

// Breaker stops invoking the check after repeated consecutive failures and
// reports resilience.ErrCircuitOpen until the cooldown passes.
func Breaker(cfg resilience.CircuitBreakerConfig) CheckOption {
	return func(e *entry) {
		e.breaker = resilience.NewCircuitBreaker(cfg)
	}
}

// Add registers c under name. It fails with ErrInvalidName, ErrNilChecker or
// ErrDuplicateCheck; on failure the registry is left unchanged.
func (r *Registry) Add(name string, c Checker, opts ...CheckOption) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if c == nil {
		return ErrNilChecker
	}

	e := &entry{name: name, checker: c, timeout: r.timeout}
	for _, opt := range opts {
		opt(e)
	}

	r.mu.Lock()
	if _, exists := r.entries[name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrDuplicateCheck, name)
	}
	r.entries[name] = e
	r.order = append(r.order, name)
	r.gen++
	r.mu.Unlock()

	r.invalidate()
	return nil
}

// AddFunc registers fn under name.
func (r *Registry) AddFunc(name string, fn func(context.Context) error, opts ...CheckOption) error {
	if fn == nil {
		return ErrNilChecker
	}
	return r.Add(name, CheckFunc(fn), opts...)
}

// AddBool registers a predicate under name.
func (r *Registry) AddBool(name string, fn func() bool, opts ...CheckOption) error {
	if fn == nil {
		return ErrNilChecker
	}
	return r.Add(name, BoolFunc(fn), opts...)
}

// Remove unregisters name, or returns ErrCheckNotFound.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	if _, ok := r.entries[name]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrCheckNotFound, name)
	}
	delete(r.entries, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.gen++
	r.mu.Unlock()

	r.invalidate()
	return nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// snapshot returns the entries in order with the generation they belong to.
func (r *Registry) snapshot() ([]*entry, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*entry, len(r.order))
	for i, name := range r.order {
		entries[i] = r.entries[name]
	}
	return entries, r.gen
}

func (r *Registry) lookup(name string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// invalidate drops the cached report and detaches any run in flight, so
// later callers start over with the new set of checks.
func (r *Registry) invalidate() {
	r.flight.Forget(reportCacheKey)
	if r.reportCache != nil {
		_ = r.reportCache.Delete(context.Background(), reportCacheKey)
	}
}
