// Package config loads the linearcheck CLI's TOML configuration and
// derives resource-bound defaults (worker count, Seen cache size) from the
// host it's running on.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pbnjay/memory"

	"github.com/ashgrove/linearcheck/seen"
)

// bytesPerSeenEntry estimates the footprint of one Seen cache slot (an
// atomic.Pointer plus the EquivalenceKey it usually points at); used only
// to pick a default cache size that fits comfortably in available memory.
const bytesPerSeenEntry = 256

// Config is the on-disk shape of a linearcheck TOML file. Every field is
// optional; zero values are replaced by Defaults at Load time.
type Config struct {
	// Workers is the explorer pool size. Zero means CPU cores + 2 (§6).
	Workers int `toml:"workers"`
	// ReporterPeriod is how often progress is logged, as a duration
	// string (e.g. "5s"). Zero/empty means 5s; a negative value disables
	// the reporter.
	ReporterPeriod string `toml:"reporter_period"`
	// SeenCacheBits sizes the Seen cache at 2^SeenCacheBits entries.
	// Zero means derive a value from available system memory, capped at
	// seen.MaxBits (§5).
	SeenCacheBits uint `toml:"seen_cache_bits"`
}

// Resolved is a Config with every default applied and the duration string
// parsed, ready to hand to analyzer.Options.
type Resolved struct {
	Workers        int
	ReporterPeriod time.Duration
	SeenCacheBits  uint
}

// Load reads and parses a TOML file at path, then resolves it against
// host defaults. A missing or empty path resolves Defaults() directly.
func Load(path string) (Resolved, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Resolved{}, fmt.Errorf("config: %w", err)
		}
	}
	return cfg.resolve()
}

// Defaults resolves an empty Config, i.e. the settings used when no
// config file is given.
func Defaults() Resolved {
	r, _ := Config{}.resolve()
	return r
}

func (c Config) resolve() (Resolved, error) {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() + 2
	}

	period := 5 * time.Second
	switch c.ReporterPeriod {
	case "":
		// default
	default:
		d, err := time.ParseDuration(c.ReporterPeriod)
		if err != nil {
			return Resolved{}, fmt.Errorf("config: reporter_period: %w", err)
		}
		period = d
	}
	if period < 0 {
		period = 0
	}

	bits := c.SeenCacheBits
	if bits == 0 {
		bits = defaultSeenCacheBits()
	}
	if bits > seen.MaxBits {
		bits = seen.MaxBits
	}

	return Resolved{
		Workers:        workers,
		ReporterPeriod: period,
		SeenCacheBits:  bits,
	}, nil
}

// defaultSeenCacheBits picks the largest power-of-two entry count whose
// estimated footprint is at most an eighth of total system memory,
// capped at seen.MaxBits (§5 "Seen cache ≤ 2²⁴ entries").
func defaultSeenCacheBits() uint {
	total := memory.TotalMemory()
	budget := total / 8

	var bits uint = 12
	for bits < seen.MaxBits {
		if (uint64(1)<<(bits+1))*bytesPerSeenEntry > budget {
			break
		}
		bits++
	}
	return bits
}
