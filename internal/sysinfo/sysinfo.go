// Package sysinfo samples host load for the HUD and decides whether the host
// counts as low power.
package sysinfo

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	lowPowerCPUs   = 2
	lowPowerMemory = 4 << 30
)

// Stats is one sample of host usage, in percent.
type Stats struct {
	CPU    float64
	Memory float64
}

// LowPower reports whether the host has few cores or little memory. Hosts
// that cannot be probed are treated as capable.
func LowPower(ctx context.Context) bool {
	var cpus int
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		cpus = n
	}
	var total uint64
	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		total = v.Total
	}
	return isLowPower(cpus, total)
}

// isLowPower applies the tier thresholds. Zero means the value is unknown
// and does not count against the host.
func isLowPower(cpus int, memTotal uint64) bool {
	if cpus > 0 && cpus <= lowPowerCPUs {
		return true
	}
	return memTotal > 0 && memTotal < lowPowerMemory
}

// Monitor keeps the latest host usage sample, refreshed in the background.
type Monitor struct {
	interval time.Duration

	mu    sync.RWMutex
	stats Stats
}

func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Monitor{interval: interval}
}

// Start samples until ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			m.update(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stats returns the most recent sample.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

func (m *Monitor) update(ctx context.Context) {
	var s Stats
	if v, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.Memory = v.UsedPercent
	}
	// zero interval compares against the previous call instead of blocking
	if c, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(c) > 0 {
		s.CPU = c[0]
	}
	s.CPU = math.Round(s.CPU*10) / 10
	s.Memory = math.Round(s.Memory*10) / 10

	m.mu.Lock()
	m.stats = s
	m.mu.Unlock()
}
