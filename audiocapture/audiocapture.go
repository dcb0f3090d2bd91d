// Package audiocapture records microphone audio as signed 16-bit PCM.
package audiocapture

import "errors"

var (
	// ErrRunning is returned when Start is called on a running capturer.
	ErrRunning = errors.New("audiocapture: already running")

	// ErrNilHandler is returned when Start is called without a handler.
	ErrNilHandler = errors.New("audiocapture: nil handler")
)

// AudioHandler receives one chunk of little-endian S16 PCM.
// The slice is owned by the handler.
type AudioHandler func(chunk []byte)

// Capturer captures audio from an input device.
type Capturer interface {
	// Start begins delivering chunks to handler.
	Start(handler AudioHandler) error

	// Stop halts capture and releases the device. Safe to call repeatedly.
	Stop() error
}

// Config describes the requested capture stream.
type Config struct {
	SampleRate int // Default 16000 Hz
	Channels   int // Default mono
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	return c
}

// copyChunk detaches a device buffer, which the driver reuses between callbacks.
func copyChunk(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
