// Package sysinfo samples host statistics for the system monitor window and
// renders them as short text lines with a CPU history graph.
package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Snapshot is one sample of host statistics.
type Snapshot struct {
	Time       time.Time
	CPU        float64 // percent, all cores
	MemUsed    uint64
	MemTotal   uint64
	MemPercent float64
	Load1      float64
	Load5      float64
	Load15     float64
	Uptime     time.Duration
	Hostname   string
	Platform   string
}

// Probe collects a snapshot.
type Probe func(ctx context.Context) (Snapshot, error)

// HostProbe reads statistics from the running host. Statistics the
// platform cannot provide are left zero and reported in the joined error.
func HostProbe(ctx context.Context) (Snapshot, error) {
	s := Snapshot{Time: time.Now()}
	var errs []error

	// Zero interval compares against the previous call, so the first
	// sample after start-up reads as 0%.
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else if len(pct) > 0 {
		s.CPU = pct[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		s.MemUsed, s.MemTotal, s.MemPercent = vm.Used, vm.Total, vm.UsedPercent
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("load: %w", err))
	} else {
		s.Load1, s.Load5, s.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	if info, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host: %w", err))
	} else {
		s.Hostname = info.Hostname
		s.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		s.Uptime = time.Duration(info.Uptime) * time.Second
	}

	return s, errors.Join(errs...)
}

// Sampler keeps the most recent CPU readings for the history graph.
type Sampler struct {
	probe   Probe
	size    int
	history []float64
	last    Snapshot
}

// NewSampler returns a sampler that keeps size CPU readings. A nil probe
// uses HostProbe.
func NewSampler(size int, probe Probe) *Sampler {
	if size <= 0 {
		size = 10
	}
	if probe == nil {
		probe = HostProbe
	}
	return &Sampler{probe: probe, size: size}
}

// Sample takes a snapshot and records its CPU reading. The snapshot is
// returned even when some statistics failed.
func (s *Sampler) Sample(ctx context.Context) (Snapshot, error) {
	snap, err := s.probe(ctx)
	if len(s.history) >= s.size {
		s.history = s.history[1:]
	}
	s.history = append(s.history, snap.CPU)
	s.last = snap
	return snap, err
}

// History returns the recorded CPU readings, oldest first.
func (s *Sampler) History() []float64 {
	out := make([]float64, len(s.history))
	copy(out, s.history)
	return out
}

// Last returns the most recent snapshot.
func (s *Sampler) Last() Snapshot { return s.last }

var bars = []rune("▁▂▃▄▅▆▇█")

// Graph renders the CPU history as a bar graph exactly size runes wide,
// padded with spaces on the left until the history fills up.
func (s *Sampler) Graph() string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", s.size-len(s.history)))
	for _, usage := range s.history {
		// 100/8 = 12.5
		h := int(usage / 12.5)
		h = max(0, min(h, len(bars)-1))
		b.WriteRune(bars[h])
	}
	return b.String()
}

// Lines formats the last snapshot for display, one statistic per line.
func (s *Sampler) Lines() []string {
	snap := s.last
	lines := []string{
		fmt.Sprintf("CPU  %s %3.0f%%", s.Graph(), snap.CPU),
		fmt.Sprintf("MEM  %s / %s (%.0f%%)", humanize.IBytes(snap.MemUsed), humanize.IBytes(snap.MemTotal), snap.MemPercent),
		fmt.Sprintf("LOAD %.2f %.2f %.2f", snap.Load1, snap.Load5, snap.Load15),
		fmt.Sprintf("UP   %s", FormatUptime(snap.Uptime)),
	}
	if snap.Hostname != "" {
		lines = append(lines, fmt.Sprintf("HOST %s", snap.Hostname))
	}
	if snap.Platform != "" {
		lines = append(lines, fmt.Sprintf("OS   %s", snap.Platform))
	}
	return lines
}

// FormatUptime renders d as days, hours and minutes.
func FormatUptime(d time.Duration) string {
	d = d.Truncate(time.Minute)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
