// internal/config/config.go
package config

type Config struct {
	Chickenbot BotConfig `yaml:"chickenbot"`
}

// ---- BOT ----

type BotConfig struct {
	Process   ProcessConfig   `yaml:"process"`
	Threshold int64           `yaml:"threshold"`
	Poll      PollConfig      `yaml:"poll"`
	Panic     PanicConfig     `yaml:"panic"`
	Reader    ReaderConfig    `yaml:"reader"`
	Resources ResourcesConfig `yaml:"resources"`
}

// ---- PROCESS ----

type ProcessConfig struct {
	Name   string `yaml:"name"`
	Window string `yaml:"window"`

	// Module the pointer chains are relative to. Defaults to Name.
	Module string `yaml:"module"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- PANIC ----

type PanicConfig struct {
	CooldownMs int `yaml:"cooldown_ms"`
}

// ---- READER ----

type ReaderConfig struct {
	MissLimit  int    `yaml:"miss_limit"`
	ReattachMs int    `yaml:"reattach_ms"`
	SanityMax  uint32 `yaml:"sanity_max"`
}

// ---- RESOURCE POINTER CHAINS ----

type ResourcesConfig struct {
	HP     ChainConfig `yaml:"hp"`
	Mana   ChainConfig `yaml:"mp"`
	Shield ChainConfig `yaml:"es"`
}

// ChainConfig is one pointer chain: module base + static base, then one
// dereference per offset. Geometry only: no semantics.
type ChainConfig struct {
	Base    uint64   `yaml:"base"`
	Offsets []uint64 `yaml:"offsets"`
}
