package hotkey

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// nativeBackend registers system hotkeys through the OS hotkey API.
type nativeBackend struct {
	mu      sync.Mutex
	pending []nativeBinding
	active  []*hotkey.Hotkey
	done    chan struct{}
}

type nativeBinding struct {
	hk *hotkey.Hotkey
	fn func()
}

func newNative() *nativeBackend { return &nativeBackend{} }

func (n *nativeBackend) Name() string { return "native" }

func (n *nativeBackend) Register(c Combo, fn func()) error {
	mods, err := nativeMods(c.Mods)
	if err != nil {
		return err
	}
	key, ok := nativeKeys[c.Key]
	if !ok {
		return fmt.Errorf("native: unsupported key %q", c.Key)
	}

	n.mu.Lock()
	n.pending = append(n.pending, nativeBinding{hk: hotkey.New(mods, key), fn: fn})
	n.mu.Unlock()
	return nil
}

func (n *nativeBackend) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.done = make(chan struct{})
	for _, b := range n.pending {
		if err := b.hk.Register(); err != nil {
			return err
		}
		n.active = append(n.active, b.hk)
		go listen(b.hk, b.fn, n.done)
	}
	n.pending = nil
	return nil
}

func (n *nativeBackend) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.done != nil {
		close(n.done)
		n.done = nil
	}
	for _, hk := range n.active {
		_ = hk.Unregister()
	}
	n.active = nil
	n.pending = nil
}

func listen(hk *hotkey.Hotkey, fn func(), done <-chan struct{}) {
	keydown := hk.Keydown()
	for {
		select {
		case <-done:
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			fn()
		}
	}
}

func nativeMods(mods []Modifier) ([]hotkey.Modifier, error) {
	out := make([]hotkey.Modifier, 0, len(mods))
	for _, m := range mods {
		switch m {
		case ModCmdOrCtrl:
			out = append(out, modCmdOrCtrl)
		case ModCtrl:
			out = append(out, hotkey.ModCtrl)
		case ModShift:
			out = append(out, hotkey.ModShift)
		default:
			return nil, fmt.Errorf("native: unsupported modifier %s", m)
		}
	}
	return out, nil
}

var nativeKeys = map[string]hotkey.Key{
	"A": hotkey.KeyA, "B": hotkey.KeyB, "C": hotkey.KeyC, "D": hotkey.KeyD,
	"E": hotkey.KeyE, "F": hotkey.KeyF, "G": hotkey.KeyG, "H": hotkey.KeyH,
	"I": hotkey.KeyI, "J": hotkey.KeyJ, "K": hotkey.KeyK, "L": hotkey.KeyL,
	"M": hotkey.KeyM, "N": hotkey.KeyN, "O": hotkey.KeyO, "P": hotkey.KeyP,
	"Q": hotkey.KeyQ, "R": hotkey.KeyR, "S": hotkey.KeyS, "T": hotkey.KeyT,
	"U": hotkey.KeyU, "V": hotkey.KeyV, "W": hotkey.KeyW, "X": hotkey.KeyX,
	"Y": hotkey.KeyY, "Z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
}
