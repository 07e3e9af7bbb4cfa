package sched

import (
	"os"
	"runtime"
	"strings"
	"time"

	yaml "github.com/goccy/go-yaml"
)

// BulkScheduleMode selects which chunk-count formula BulkSchedule uses.
// See REDESIGN FLAGS in SPEC_FULL.md: the source formula is very likely
// a defect, but is preserved as the default rather than silently fixed.
type BulkScheduleMode string

const (
	// BulkScheduleObserved preserves the source's chunks = max(active*8, n)
	// formula, which degenerates to one chunk per element for n >> active.
	BulkScheduleObserved BulkScheduleMode = "observed"
	// BulkScheduleCoarse uses chunks = min(active*8, n), the evidently
	// intended coarse-chunking behavior. Opt-in only.
	BulkScheduleCoarse BulkScheduleMode = "coarse"
)

// Config mirrors the YAML file that Load reads.
type Config struct {
	Threads          int              `yaml:"threads"`            // 0 = runtime.NumCPU()
	Priority         string           `yaml:"priority"`           // nominal priority: low|normal|high|critical
	IdleSleepUS      int              `yaml:"idle_sleep_us"`      // 10 (by default)
	InitialCapacity  int              `yaml:"initial_capacity"`   // 1024 (by default)
	NUMAEnabled      bool             `yaml:"numa_enabled"`       // false by default
	CSVPath          string           `yaml:"csv_path"`           // "" = no CSV telemetry
	BulkScheduleMode BulkScheduleMode `yaml:"bulk_schedule_mode"` // "observed" (by default)
}

// defaultConfig returns a Config with sane production defaults, used
// when no config file is supplied or fields are missing/invalid.
func defaultConfig() Config {
	return Config{
		Threads:          0,
		Priority:         "normal",
		IdleSleepUS:      10,
		InitialCapacity:  1024,
		NUMAEnabled:      false,
		CSVPath:          "",
		BulkScheduleMode: BulkScheduleObserved,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)
	return cfg.sanitize()
}

// sanitize clamps every field to a usable value, the same shape as the
// teacher's config.go sanity clamps.
func (cfg Config) sanitize() Config {
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	if cfg.IdleSleepUS <= 0 {
		cfg.IdleSleepUS = 10
	}
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = 1024
	}
	if cfg.BulkScheduleMode != BulkScheduleCoarse {
		cfg.BulkScheduleMode = BulkScheduleObserved
	}
	if cfg.Priority == "" {
		cfg.Priority = "normal"
	}
	return cfg
}

// idleSleep returns the configured idle-sleep duration as a
// time.Duration, defaulting to 10 microseconds.
func (cfg Config) idleSleep() time.Duration {
	return time.Duration(cfg.IdleSleepUS) * time.Microsecond
}

// threads returns the configured worker count, resolved to the host's
// logical CPU count when unset.
func (cfg Config) threads() int {
	if cfg.Threads > 0 {
		return cfg.Threads
	}
	return runtime.NumCPU()
}

func parsePriority(s string) Priority {
	switch strings.ToLower(s) {
	case "low":
		return Low
	case "high":
		return High
	case "critical":
		return Critical
	default:
		return Normal
	}
}
