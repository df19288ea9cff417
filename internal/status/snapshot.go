// internal/status/snapshot.go
package status

import "time"

// Snapshot is the read-only view of the watchdog handed to the operator
// surface. It contains no logic and no memory of the past beyond current
// state; readers may hold it across frames without tearing.
type Snapshot struct {
	Running   bool
	Panicking bool

	// BlockUntil is the instant the key block releases.
	// Zero unless Panicking.
	BlockUntil time.Time

	Health    uint16
	Threshold uint64

	// Last successful sample. HP/Mana/Shield are only meaningful
	// when HasSample is true.
	HasSample bool
	HP        uint32
	Mana      uint32
	Shield    uint32
	Total     uint64

	Misses    int
	LastError string
}
