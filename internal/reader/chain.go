// internal/reader/chain.go
package reader

// Chain is one resolved-at-runtime pointer chain: module base + static
// base, then one 64-bit dereference plus offset per entry.
// Geometry only: no semantics.
type Chain struct {
	Base    uintptr
	Offsets []uintptr
}

// memory abstracts the process-memory reads the resolver needs.
// The resolver depends on geometry only.
type memory interface {
	ReadUint64(addr uintptr) (uint64, error)
	ReadUint32(addr uintptr) (uint32, error)
}

// resolve walks one chain down to the address of the final value.
// Any failed dereference aborts the walk; a half-resolved address is
// garbage and must never be read from.
func resolve(mem memory, moduleBase uintptr, c Chain) (uintptr, error) {
	addr := moduleBase + c.Base
	for _, off := range c.Offsets {
		v, err := mem.ReadUint64(addr)
		if err != nil {
			return 0, err
		}
		addr = uintptr(v) + off
	}
	return addr, nil
}
