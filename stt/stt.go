// Package stt provides speech-to-text against hosted transcription APIs.
package stt

import (
	"context"
	"errors"

	"go.aimuz.me/glimpse/internal/types"
)

// ErrEmptyAudio is returned when the audio file holds no samples.
var ErrEmptyAudio = errors.New("empty audio")

// Transcriber converts a recorded audio file to text.
type Transcriber interface {
	// Name returns the provider identifier used in logs.
	Name() string

	// Transcribe uploads the audio file at path and returns its text.
	// The file is only read; the caller owns its lifetime.
	Transcribe(ctx context.Context, path string) (types.Transcript, error)
}
