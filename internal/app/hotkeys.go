package app

import (
	"log/slog"

	"go.aimuz.me/glimpse/hotkey"
)

// Fixed global shortcuts.
const (
	ComboToggleWindow    = "CmdOrCtrl+Shift+A"
	ComboCaptureScreen   = "CmdOrCtrl+Shift+S"
	ComboToggleRecording = "CmdOrCtrl+Shift+R"
)

func (s *Service) hotkeyBindings() []struct {
	name  string
	combo string
	fn    func()
} {
	return []struct {
		name  string
		combo string
		fn    func()
	}{
		{"toggle-window", ComboToggleWindow, s.ToggleWindowVisibility},
		{"capture-screen", ComboCaptureScreen, func() { s.CaptureScreen() }},
		{"toggle-recording", ComboToggleRecording, s.ToggleRecording},
	}
}

func (s *Service) setupHotkeys() {
	if s.hotkeys == nil {
		return
	}

	for _, b := range s.hotkeyBindings() {
		combo, err := hotkey.ParseCombo(b.combo)
		if err != nil {
			slog.Error("parse hotkey", "combo", b.combo, "error", err)
			continue
		}
		if err := s.hotkeys.Bind(b.name, combo, b.fn); err != nil {
			slog.Error("bind hotkey", "action", b.name, "error", err)
		}
	}

	if err := s.hotkeys.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}
