// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	EventScreenshotCaptured = "screenshot-captured"
	EventAudioTranscribed   = "audio-transcribed"
	EventRecordingState     = "recording-state"
)

// Emitter pushes a named event to the view.
type Emitter func(name string, data any)
