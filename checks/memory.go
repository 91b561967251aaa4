package checks

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jonwraymond/healthkit/health"
)

// MemoryConfig configures the memory check.
type MemoryConfig struct {
	// Threshold is the heap-to-limit ratio at which the check fails.
	// Value should be between 0 and 1. Default: 0.95
	Threshold float64

	// Limit is the byte budget the heap is measured against.
	// Default: 0 (memory obtained from the OS, MemStats.Sys)
	Limit uint64
}

// MemoryChecker fails when heap usage is too close to its budget.
type MemoryChecker struct {
	cfg   MemoryConfig
	stats func(*runtime.MemStats)
}

// Memory creates a memory checker.
func Memory(cfg MemoryConfig) *MemoryChecker {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = 0.95
	}
	return &MemoryChecker{cfg: cfg, stats: runtime.ReadMemStats}
}

// Check reads runtime memory statistics.
func (m *MemoryChecker) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var stats runtime.MemStats
	m.stats(&stats)

	limit := m.cfg.Limit
	if limit == 0 {
		limit = stats.Sys
	}
	if limit == 0 {
		return nil
	}

	ratio := float64(stats.HeapAlloc) / float64(limit)
	if ratio >= m.cfg.Threshold {
		return fmt.Errorf("%w: %.1f%% of %d bytes", ErrMemoryCritical, ratio*100, limit)
	}
	return nil
}

var _ health.Checker = (*MemoryChecker)(nil)
