// internal/reader/reader.go
package reader

import (
	"time"

	"github.com/3picF4iL/poe2-chicken-bot/internal/config"
)

// Config is the minimal runtime config the reader needs.
type Config struct {
	// ProcessName is the executable to attach to; Module is the module
	// the chains are relative to (usually the same name).
	ProcessName string
	Module      string

	HP     Chain
	Mana   Chain
	Shield Chain

	// Reattach throttles how often a dead or missing target is re-probed.
	Reattach time.Duration

	// SanityMax caps plausible per-pool values. A read above it means the
	// chains resolved to garbage after a game update or load screen; the
	// sample is discarded and the target re-attached.
	SanityMax uint32
}

// FromConfig maps the operator config onto reader geometry.
func FromConfig(cfg *config.Config) Config {
	b := cfg.Chickenbot
	return Config{
		ProcessName: b.Process.Name,
		Module:      b.Process.Module,
		HP:          chainFrom(b.Resources.HP),
		Mana:        chainFrom(b.Resources.Mana),
		Shield:      chainFrom(b.Resources.Shield),
		Reattach:    time.Duration(b.Reader.ReattachMs) * time.Millisecond,
		SanityMax:   b.Reader.SanityMax,
	}
}

func chainFrom(c config.ChainConfig) Chain {
	offsets := make([]uintptr, 0, len(c.Offsets))
	for _, o := range c.Offsets {
		offsets = append(offsets, uintptr(o))
	}
	return Chain{Base: uintptr(c.Base), Offsets: offsets}
}
