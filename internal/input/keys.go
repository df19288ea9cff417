// internal/input/keys.go
package input

import "sync"

// Virtual-key codes. ESC is both the panic action and a suppressed key;
// SPACE resumes the game and is suppressed for the same window.
const (
	vkEscape uint32 = 0x1B
	vkSpace  uint32 = 0x20
)

// blockSet is the hook-independent half of key suppression: which keys
// are covered and whether suppression is currently active. The hook
// callback reads it from the hook thread while the watchdog goroutine
// toggles it, so access is locked.
type blockSet struct {
	mu     sync.Mutex
	active bool
	keys   map[uint32]struct{}
}

func newBlockSet(keys ...uint32) *blockSet {
	b := &blockSet{keys: make(map[uint32]struct{}, len(keys))}
	for _, k := range keys {
		b.keys[k] = struct{}{}
	}
	return b
}

// setActive toggles suppression and reports whether the state changed.
// Calling with the current value twice has no additional effect.
func (b *blockSet) setActive(active bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active == active {
		return false
	}
	b.active = active
	return true
}

// blocks reports whether delivery of vk is currently suppressed.
func (b *blockSet) blocks(vk uint32) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active {
		return false
	}
	_, ok := b.keys[vk]
	return ok
}
