// internal/input/input_stub.go
//go:build !windows

package input

import (
	"errors"
	"log/slog"
)

// Key injection and suppression need the Win32 message queue; on other
// platforms the package only carries the blockSet logic and its tests.

type KeyboardController struct{}

func New(windowTitle string, log *slog.Logger) (*KeyboardController, error) {
	return nil, errors.New("input: key injection requires windows")
}

func (c *KeyboardController) TriggerPanic() error        { return errors.ErrUnsupported }
func (c *KeyboardController) SetBlock(active bool) error { return errors.ErrUnsupported }
func (c *KeyboardController) Close() error               { return nil }
