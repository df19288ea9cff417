// internal/config/normalize.go
package config

// Defaults applied by Normalize. The process and window names match the
// Steam build of the game; the timing values match the behavior the bot
// shipped with (50ms cadence, 2s key block).
const (
	DefaultProcessName = "PathOfExileSteam.exe"
	DefaultWindowName  = "Path of Exile 2"

	DefaultIntervalMs = 50
	DefaultCooldownMs = 2000

	// 40 consecutive misses at the default cadence is ~2s of silence
	// before the operator is told the process is gone.
	DefaultMissLimit = 40

	DefaultReattachMs = 2000
	DefaultSanityMax  = 20000
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	b := &cfg.Chickenbot

	if b.Process.Name == "" {
		b.Process.Name = DefaultProcessName
	}
	if b.Process.Window == "" {
		b.Process.Window = DefaultWindowName
	}
	if b.Process.Module == "" {
		b.Process.Module = b.Process.Name
	}

	if b.Poll.IntervalMs == 0 {
		b.Poll.IntervalMs = DefaultIntervalMs
	}
	if b.Panic.CooldownMs == 0 {
		b.Panic.CooldownMs = DefaultCooldownMs
	}

	if b.Reader.MissLimit == 0 {
		b.Reader.MissLimit = DefaultMissLimit
	}
	if b.Reader.ReattachMs == 0 {
		b.Reader.ReattachMs = DefaultReattachMs
	}
	if b.Reader.SanityMax == 0 {
		b.Reader.SanityMax = DefaultSanityMax
	}
}
