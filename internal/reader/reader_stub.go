// internal/reader/reader_stub.go
//go:build !windows

package reader

import (
	"errors"
	"log/slog"

	"github.com/3picF4iL/poe2-chicken-bot/internal/watchdog"
)

// The game only runs on Windows; on other platforms the reader exists so
// config validation and the chain resolver stay testable everywhere.

type MemoryReader struct{}

func New(cfg Config, log *slog.Logger) (*MemoryReader, error) {
	return nil, errors.New("reader: process memory reading requires windows")
}

func (r *MemoryReader) Sample() (watchdog.ResourceSnapshot, bool) {
	return watchdog.ResourceSnapshot{}, false
}

func (r *MemoryReader) Close() error { return nil }
