// internal/input/input_windows.go
//go:build windows

package input

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                 = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW        = user32.NewProc("FindWindowW")
	procPostMessageW       = user32.NewProc("PostMessageW")
	procSetWindowsHookEx   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHook  = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx     = user32.NewProc("CallNextHookEx")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
)

const (
	whKeyboardLL = 13
	wmKeydown    = 0x0100
	wmQuit       = 0x0012
	hcAction     = 0
)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	HWND    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// KeyboardController implements watchdog.Controller: it posts the escape
// keypress to the game window and suppresses ESC/SPACE system-wide via a
// low-level keyboard hook.
//
// The hook lives on a dedicated OS thread for its whole lifetime; the
// callback only ever consults the blockSet, so SetBlock is a cheap state
// flip and never touches the hook itself.
type KeyboardController struct {
	log     *slog.Logger
	window  string
	blocked *blockSet

	hwnd     atomic.Uintptr
	hook     uintptr
	threadID uint32
	done     chan struct{}
}

// New installs the keyboard hook and locates the game window.
// The window may appear later; only the hook is mandatory.
func New(windowTitle string, log *slog.Logger) (*KeyboardController, error) {
	if windowTitle == "" {
		return nil, errors.New("input: window title required")
	}
	if log == nil {
		log = slog.Default()
	}

	c := &KeyboardController{
		log:     log,
		window:  windowTitle,
		blocked: newBlockSet(vkEscape, vkSpace),
		done:    make(chan struct{}),
	}

	installed := make(chan error, 1)
	go c.hookLoop(installed)
	if err := <-installed; err != nil {
		return nil, err
	}

	c.refreshWindow()
	return c, nil
}

// TriggerPanic posts one WM_KEYDOWN VK_ESCAPE to the game window.
func (c *KeyboardController) TriggerPanic() error {
	hwnd := c.hwnd.Load()
	if hwnd == 0 {
		hwnd = c.refreshWindow()
	}
	if hwnd == 0 {
		return fmt.Errorf("input: game window %q not found", c.window)
	}

	ret, _, err := procPostMessageW.Call(hwnd, wmKeydown, uintptr(vkEscape), 0)
	if ret == 0 {
		// Window went away between lookup and post; drop the handle so
		// the next call re-finds it.
		c.hwnd.Store(0)
		return fmt.Errorf("input: post escape: %w", err)
	}
	return nil
}

// SetBlock toggles ESC/SPACE suppression. Idempotent.
func (c *KeyboardController) SetBlock(active bool) error {
	if c.blocked.setActive(active) {
		c.log.Debug("key block toggled", "active", active)
	}
	return nil
}

// Close releases the block, removes the hook and stops the hook thread.
func (c *KeyboardController) Close() error {
	c.blocked.setActive(false)

	if c.hook != 0 {
		procUnhookWindowsHook.Call(c.hook)
		c.hook = 0
	}
	if c.threadID != 0 {
		procPostThreadMessageW.Call(uintptr(c.threadID), wmQuit, 0, 0)
	}
	<-c.done
	return nil
}

func (c *KeyboardController) refreshWindow() uintptr {
	title, err := windows.UTF16PtrFromString(c.window)
	if err != nil {
		return 0
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(title)))
	c.hwnd.Store(hwnd)
	return hwnd
}

// hookLoop owns the low-level hook. Hooks require a thread with a message
// pump, so the goroutine pins its OS thread and pumps until WM_QUIT.
func (c *KeyboardController) hookLoop(installed chan<- error) {
	defer close(c.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	c.threadID = windows.GetCurrentThreadId()

	callback := windows.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if int32(nCode) == hcAction {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			if c.blocked.blocks(kb.VkCode) {
				// Non-zero swallows the event.
				return 1
			}
		}
		ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return ret
	})

	hook, _, err := procSetWindowsHookEx.Call(whKeyboardLL, callback, 0, 0)
	if hook == 0 {
		installed <- fmt.Errorf("input: install keyboard hook: %w", err)
		return
	}
	c.hook = hook
	installed <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		// 0 is WM_QUIT, ^0 is error; either way the pump is done.
		if ret == 0 || int32(ret) == -1 {
			return
		}
	}
}
