package app

import "go.aimuz.me/glimpse/internal/types"

// Bridge is the service bound to Wails. Every exported method becomes a
// view request, so this type carries nothing else.
type Bridge struct {
	svc *Service
}

// NewBridge exposes svc to the view.
func NewBridge(svc *Service) *Bridge {
	return &Bridge{svc: svc}
}

// CaptureScreen returns the primary display as a base64 PNG, or nil.
func (b *Bridge) CaptureScreen() *string { return b.svc.CaptureScreen() }

// StartRecording reports whether a new recording began.
func (b *Bridge) StartRecording() bool { return b.svc.StartRecording() }

// StopRecording ends the active recording, if any.
func (b *Bridge) StopRecording() { b.svc.StopRecording() }

// ProcessWithAI answers the user's request.
func (b *Bridge) ProcessWithAI(req types.AIRequest) string { return b.svc.ProcessWithAI(req) }

// MinimizeWindow hides the overlay.
func (b *Bridge) MinimizeWindow() { b.svc.MinimizeWindow() }

// GetStatus returns the current session state.
func (b *Bridge) GetStatus() types.Status { return b.svc.GetStatus() }

// GetVersion returns the application version.
func (b *Bridge) GetVersion() string { return b.svc.GetVersion() }
