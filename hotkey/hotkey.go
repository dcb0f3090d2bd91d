// Package hotkey registers global keyboard shortcuts.
package hotkey

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Modifier is a platform-neutral modifier key.
type Modifier int

const (
	// ModCmdOrCtrl is Command on macOS and Control elsewhere.
	ModCmdOrCtrl Modifier = iota
	ModCtrl
	ModShift
	ModAlt
)

func (m Modifier) String() string {
	switch m {
	case ModCmdOrCtrl:
		return "CmdOrCtrl"
	case ModCtrl:
		return "Ctrl"
	case ModShift:
		return "Shift"
	case ModAlt:
		return "Alt"
	}
	return fmt.Sprintf("Modifier(%d)", int(m))
}

// Combo is a key plus modifiers, e.g. CmdOrCtrl+Shift+A.
type Combo struct {
	Mods []Modifier
	Key  string // Single upper-case letter or digit
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		parts = append(parts, m.String())
	}
	return strings.Join(append(parts, c.Key), "+")
}

// ParseCombo parses accelerators like "CmdOrCtrl+Shift+A".
func ParseCombo(s string) (Combo, error) {
	parts := strings.Split(s, "+")
	var c Combo
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			if len(p) != 1 || !isAlnum(p[0]) {
				return Combo{}, fmt.Errorf("hotkey %q: key must be a single letter or digit", s)
			}
			c.Key = strings.ToUpper(p)
			break
		}
		switch strings.ToLower(p) {
		case "cmdorctrl", "commandorcontrol":
			c.Mods = append(c.Mods, ModCmdOrCtrl)
		case "ctrl", "control":
			c.Mods = append(c.Mods, ModCtrl)
		case "shift":
			c.Mods = append(c.Mods, ModShift)
		case "alt", "option":
			c.Mods = append(c.Mods, ModAlt)
		default:
			return Combo{}, fmt.Errorf("hotkey %q: unknown modifier %q", s, p)
		}
	}
	if len(c.Mods) == 0 {
		return Combo{}, fmt.Errorf("hotkey %q: at least one modifier required", s)
	}
	return c, nil
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// Backend binds combos at the OS level.
type Backend interface {
	Name() string
	Register(c Combo, fn func()) error
	Start() error
	Stop()
}

// ErrStarted is returned when bindings change after Start.
var ErrStarted = errors.New("hotkey: manager already started")

// repeatWindow swallows OS key-repeat while a combo is held down.
const repeatWindow = 300 * time.Millisecond

type binding struct {
	name  string
	combo Combo
	fn    func()
}

// Manager owns a set of named bindings on one backend.
type Manager struct {
	backend Backend

	mu       sync.Mutex
	bindings []binding
	last     map[string]time.Time
	started  bool
	now      func() time.Time
}

// NewManager creates a Manager on the given backend.
func NewManager(backend Backend) *Manager {
	return &Manager{
		backend: backend,
		last:    make(map[string]time.Time),
		now:     time.Now,
	}
}

// Bind adds a named binding. Must be called before Start.
func (m *Manager) Bind(name string, combo Combo, fn func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrStarted
	}
	for _, b := range m.bindings {
		if b.combo.String() == combo.String() {
			return fmt.Errorf("hotkey %s already bound to %s", combo, b.name)
		}
	}
	m.bindings = append(m.bindings, binding{name: name, combo: combo, fn: fn})
	return nil
}

// Start registers every binding with the backend. Handlers run on their
// own goroutine so they never block the OS event loop.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrStarted
	}

	for _, b := range m.bindings {
		if err := m.backend.Register(b.combo, func() { m.fire(b) }); err != nil {
			m.backend.Stop()
			return fmt.Errorf("register %s (%s): %w", b.name, b.combo, err)
		}
	}
	if err := m.backend.Start(); err != nil {
		m.backend.Stop()
		return fmt.Errorf("start %s backend: %w", m.backend.Name(), err)
	}

	m.started = true
	slog.Info("hotkeys registered", "backend", m.backend.Name(), "count", len(m.bindings))
	return nil
}

// Stop unregisters all bindings. Safe to call when not started.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.mu.Unlock()

	// Outside the lock: a callback in flight may be waiting in fire.
	m.backend.Stop()
	slog.Info("hotkeys unregistered", "backend", m.backend.Name())
}

func (m *Manager) fire(b binding) {
	m.mu.Lock()
	now := m.now()
	if last, ok := m.last[b.name]; ok && now.Sub(last) < repeatWindow {
		m.mu.Unlock()
		return
	}
	m.last[b.name] = now
	m.mu.Unlock()

	slog.Debug("hotkey pressed", "action", b.name, "combo", b.combo.String())
	go b.fn()
}

// New returns the backend registered under name: "gohook" or "native".
func New(name string) (Backend, error) {
	switch name {
	case "", "gohook":
		return newGohook(), nil
	case "native":
		return newNative(), nil
	}
	return nil, fmt.Errorf("unknown hotkey backend %q", name)
}
