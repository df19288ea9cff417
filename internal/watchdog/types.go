// internal/watchdog/types.go
package watchdog

import "time"

// ResourceSnapshot is one successful read of the character's pools.
// Immutable; lifetime is one poll cycle.
type ResourceSnapshot struct {
	Health uint32
	Mana   uint32
	Shield uint32
}

// Total is the value compared against the threshold.
func (s ResourceSnapshot) Total() uint64 {
	return uint64(s.Health) + uint64(s.Mana) + uint64(s.Shield)
}

// State is the panic state machine position. Exactly one state is active
// at any instant; there are no overlapping panic windows.
type State uint8

const (
	// StateIdle is both the initial state and the resting state after a
	// cooldown expires. Threshold comparison only happens here.
	StateIdle State = iota

	// StatePanicking means the escape keypress fired and ESC/SPACE are
	// suppressed until the block deadline.
	StatePanicking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePanicking:
		return "panicking"
	default:
		return "invalid"
	}
}

// Reader is the resource read contract. Sample is a non-blocking
// best-effort read; ok is false when the process is not found or the
// values are momentarily unreadable. A miss is never zero resources.
type Reader interface {
	Sample() (snap ResourceSnapshot, ok bool)
}

// Controller is the key injection contract.
// TriggerPanic fires one simulated escape keypress at the game window.
// SetBlock suppresses or releases ESC/SPACE delivery; it is idempotent.
type Controller interface {
	TriggerPanic() error
	SetBlock(active bool) error
}

// Config is the minimal runtime config the watchdog needs.
// Immutable while the loop runs.
type Config struct {
	// Threshold is the resource total below which (strictly) panic fires.
	Threshold uint64

	// Interval is the poll cadence.
	Interval time.Duration

	// Cooldown is how long ESC/SPACE stay suppressed after a trigger.
	Cooldown time.Duration

	// MissLimit is the consecutive-miss streak after which the operator
	// is told the target process is gone.
	MissLimit int
}
