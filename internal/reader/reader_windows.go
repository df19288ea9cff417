// internal/reader/reader_windows.go
//go:build windows

package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/3picF4iL/poe2-chicken-bot/internal/watchdog"
)

// MemoryReader implements watchdog.Reader against a live game process.
// All failures are soft: the watchdog sees a miss and this reader
// re-attaches on a later tick, throttled by cfg.Reattach.
type MemoryReader struct {
	cfg Config
	log *slog.Logger

	proc *process

	hpAddr     uintptr
	mpAddr     uintptr
	esAddr     uintptr
	resolved   bool
	lastAttach time.Time
}

// New creates a reader. The target process does not have to exist yet;
// attachment is attempted on the first sample and retried after loss.
func New(cfg Config, log *slog.Logger) (*MemoryReader, error) {
	if cfg.ProcessName == "" {
		return nil, errors.New("reader: process name required")
	}
	if cfg.Module == "" {
		cfg.Module = cfg.ProcessName
	}
	if log == nil {
		log = slog.Default()
	}
	return &MemoryReader{cfg: cfg, log: log}, nil
}

// Sample reads all three pools. Only called from the watchdog goroutine.
func (r *MemoryReader) Sample() (watchdog.ResourceSnapshot, bool) {
	if !r.resolved && !r.tryAttach() {
		return watchdog.ResourceSnapshot{}, false
	}

	hp, err1 := r.proc.ReadUint32(r.hpAddr)
	mp, err2 := r.proc.ReadUint32(r.mpAddr)
	es, err3 := r.proc.ReadUint32(r.esAddr)
	if err1 != nil || err2 != nil || err3 != nil {
		r.invalidate()
		return watchdog.ResourceSnapshot{}, false
	}

	if limit := r.cfg.SanityMax; limit > 0 && (hp > limit || mp > limit || es > limit) {
		// Chains resolved to garbage (load screen, game update).
		r.invalidate()
		return watchdog.ResourceSnapshot{}, false
	}

	return watchdog.ResourceSnapshot{Health: hp, Mana: mp, Shield: es}, true
}

// Close releases the process handle.
func (r *MemoryReader) Close() error {
	if r.proc == nil {
		return nil
	}
	err := r.proc.close()
	r.proc = nil
	r.resolved = false
	return err
}

// invalidate drops the resolved addresses so the next sample re-attaches.
func (r *MemoryReader) invalidate() {
	r.resolved = false
	if r.proc != nil {
		_ = r.proc.close()
		r.proc = nil
	}
}

// tryAttach opens the process and resolves all three chains.
// Throttled: a missing process is only probed every cfg.Reattach.
func (r *MemoryReader) tryAttach() bool {
	if since := time.Since(r.lastAttach); !r.lastAttach.IsZero() && since < r.cfg.Reattach {
		return false
	}
	r.lastAttach = time.Now()

	proc, err := openProcess(r.cfg.ProcessName, r.cfg.Module)
	if err != nil {
		r.log.Debug("attach failed", "process", r.cfg.ProcessName, "err", err)
		return false
	}

	hpAddr, err1 := resolve(proc, proc.moduleBase, r.cfg.HP)
	mpAddr, err2 := resolve(proc, proc.moduleBase, r.cfg.Mana)
	esAddr, err3 := resolve(proc, proc.moduleBase, r.cfg.Shield)
	if err1 != nil || err2 != nil || err3 != nil {
		_ = proc.close()
		r.log.Debug("chain resolve failed", "process", r.cfg.ProcessName)
		return false
	}

	r.proc = proc
	r.hpAddr, r.mpAddr, r.esAddr = hpAddr, mpAddr, esAddr
	r.resolved = true
	r.log.Info("attached to target process", "process", r.cfg.ProcessName)
	return true
}

// ---- process handle ----

type process struct {
	handle     windows.Handle
	moduleBase uintptr
}

func openProcess(name, module string) (*process, error) {
	pid, err := findProcessID(name)
	if err != nil {
		return nil, err
	}

	h, err := windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION,
		false,
		pid,
	)
	if err != nil {
		return nil, fmt.Errorf("reader: open pid %d: %w", pid, err)
	}

	base, err := findModuleBase(pid, module)
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, err
	}

	return &process{handle: h, moduleBase: base}, nil
}

func (p *process) close() error {
	return windows.CloseHandle(p.handle)
}

func (p *process) ReadUint64(addr uintptr) (uint64, error) {
	var buf [8]byte
	if err := p.read(addr, buf[:]); err != nil {
		return 0, err
	}
	return uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56, nil
}

func (p *process) ReadUint32(addr uintptr) (uint32, error) {
	var buf [4]byte
	if err := p.read(addr, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

func (p *process) read(addr uintptr, buf []byte) error {
	var n uintptr
	err := windows.ReadProcessMemory(p.handle, addr, &buf[0], uintptr(len(buf)), &n)
	if err != nil {
		return err
	}
	if n != uintptr(len(buf)) {
		return fmt.Errorf("reader: short read at %#x: %d of %d bytes", addr, n, len(buf))
	}
	return nil
}

// ---- toolhelp walks ----

func findProcessID(name string) (uint32, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("reader: process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var pe windows.ProcessEntry32
	pe.Size = uint32(unsafe.Sizeof(pe))

	for err = windows.Process32First(snap, &pe); err == nil; err = windows.Process32Next(snap, &pe) {
		if strings.EqualFold(windows.UTF16ToString(pe.ExeFile[:]), name) {
			return pe.ProcessID, nil
		}
	}
	return 0, fmt.Errorf("reader: process %q not found", name)
}

func findModuleBase(pid uint32, module string) (uintptr, error) {
	snap, err := windows.CreateToolhelp32Snapshot(
		windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32,
		pid,
	)
	if err != nil {
		return 0, fmt.Errorf("reader: module snapshot pid %d: %w", pid, err)
	}
	defer windows.CloseHandle(snap)

	var me windows.ModuleEntry32
	me.Size = uint32(unsafe.Sizeof(me))

	for err = windows.Module32First(snap, &me); err == nil; err = windows.Module32Next(snap, &me) {
		if strings.EqualFold(windows.UTF16ToString(me.Module[:]), module) {
			return me.ModBaseAddr, nil
		}
	}
	return 0, fmt.Errorf("reader: module %q not found in pid %d", module, pid)
}
