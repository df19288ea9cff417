// internal/config/validate.go
package config

import (
	"fmt"
)

// Poll interval bounds (milliseconds). Zero means "use default"; a non-zero
// value outside this range is an operator mistake, not a preference.
const (
	MinIntervalMs = 10
	MaxIntervalMs = 1000
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	b := cfg.Chickenbot

	// ------------------------------------------------------------
	// THRESHOLD
	// ------------------------------------------------------------

	// Negative thresholds are rejected here and never reach the loop.
	if b.Threshold < 0 {
		return fmt.Errorf("config: threshold must not be negative (got %d)", b.Threshold)
	}

	// ------------------------------------------------------------
	// TIMING
	// ------------------------------------------------------------

	if ms := b.Poll.IntervalMs; ms != 0 && (ms < MinIntervalMs || ms > MaxIntervalMs) {
		return fmt.Errorf(
			"config: poll.interval_ms must be %d-%d (got %d)",
			MinIntervalMs, MaxIntervalMs, ms,
		)
	}

	if b.Panic.CooldownMs < 0 {
		return fmt.Errorf("config: panic.cooldown_ms must not be negative (got %d)", b.Panic.CooldownMs)
	}

	if b.Reader.MissLimit < 0 {
		return fmt.Errorf("config: reader.miss_limit must not be negative (got %d)", b.Reader.MissLimit)
	}

	// ------------------------------------------------------------
	// POINTER CHAINS
	// ------------------------------------------------------------

	chains := []struct {
		name  string
		chain ChainConfig
	}{
		{"hp", b.Resources.HP},
		{"mp", b.Resources.Mana},
		{"es", b.Resources.Shield},
	}

	for _, c := range chains {
		if c.chain.Base == 0 {
			return fmt.Errorf("config: resources.%s.base is required", c.name)
		}
	}

	return nil
}
