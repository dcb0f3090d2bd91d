package hotkey

import (
	"fmt"
	"runtime"
	"sync"

	hook "github.com/robotn/gohook"
)

// gohookBackend uses a process-wide low-level keyboard hook.
type gohookBackend struct {
	mu      sync.Mutex
	running bool
}

func newGohook() *gohookBackend { return &gohookBackend{} }

func (g *gohookBackend) Name() string { return "gohook" }

func (g *gohookBackend) Register(c Combo, fn func()) error {
	keys, err := gohookKeys(c, runtime.GOOS)
	if err != nil {
		return err
	}
	hook.Register(hook.KeyDown, keys, func(hook.Event) { fn() })
	return nil
}

func (g *gohookBackend) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return nil
	}
	events := hook.Start()
	// Process dispatches registered callbacks until hook.End.
	go func() { <-hook.Process(events) }()
	g.running = true
	return nil
}

func (g *gohookBackend) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return
	}
	hook.End()
	g.running = false
}

// gohookKeys converts a Combo to gohook's key list: key first, then modifiers.
func gohookKeys(c Combo, goos string) ([]string, error) {
	keys := []string{toLowerASCII(c.Key)}
	for _, m := range c.Mods {
		switch m {
		case ModCmdOrCtrl:
			if goos == "darwin" {
				keys = append(keys, "cmd")
			} else {
				keys = append(keys, "ctrl")
			}
		case ModCtrl:
			keys = append(keys, "ctrl")
		case ModShift:
			keys = append(keys, "shift")
		case ModAlt:
			keys = append(keys, "alt")
		default:
			return nil, fmt.Errorf("gohook: unsupported modifier %s", m)
		}
	}
	return keys, nil
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
