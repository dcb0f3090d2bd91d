package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"go.aimuz.me/glimpse/internal/types"
)

const defaultWhisperModel = "whisper-1"

// WhisperAPI transcribes audio with an OpenAI-compatible transcription endpoint.
type WhisperAPI struct {
	client   openai.Client
	model    string
	language string
}

// WhisperAPIConfig holds configuration for WhisperAPI.
type WhisperAPIConfig struct {
	APIKey   string
	BaseURL  string // Optional, defaults to OpenAI's API
	Model    string // Optional, defaults to "whisper-1"
	Language string // Optional ISO-639-1 hint; empty or "auto" detects
}

// NewWhisperAPI creates a new WhisperAPI transcriber.
func NewWhisperAPI(cfg WhisperAPIConfig) *WhisperAPI {
	model := cfg.Model
	if model == "" {
		model = defaultWhisperModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &WhisperAPI{
		client:   openai.NewClient(opts...),
		model:    model,
		language: cfg.Language,
	}
}

func (w *WhisperAPI) Name() string { return "whisper-api" }

// Transcribe sends the audio file to the transcription endpoint.
func (w *WhisperAPI) Transcribe(ctx context.Context, path string) (types.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("stat audio: %w", err)
	}
	if info.Size() == 0 {
		return types.Transcript{}, ErrEmptyAudio
	}

	params := openai.AudioTranscriptionNewParams{
		File:           f,
		Model:          openai.AudioModel(w.model),
		ResponseFormat: openai.AudioResponseFormatJSON,
	}
	// The API rejects "auto"; omitting the field means auto-detect.
	if w.language != "" && w.language != "auto" {
		params.Language = openai.String(w.language)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcribe: %w", err)
	}

	return types.Transcript{
		Text:     strings.TrimSpace(resp.Text),
		Language: w.language,
	}, nil
}
