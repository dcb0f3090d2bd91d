// Package config handles application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	appName        = "glimpse"
	configFileName = "config.json"

	// EnvPrefix namespaces every environment override.
	EnvPrefix = "GLIMPSE_"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no credential was supplied.
var ErrMissingAPIKey = errors.New("api key not set: export GLIMPSE_API_KEY or GROQ_API_KEY")

// Defaults for the hosted OpenAI-compatible service.
const (
	DefaultBaseURL         = "https://api.groq.com/openai/v1/"
	DefaultModel           = "llama-3.1-70b-versatile"
	DefaultSTTModel        = "distil-whisper-large-v3-en"
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 500
	DefaultSampleRate      = 16000
	DefaultThumbnailWidth  = 1920
	DefaultThumbnailHeight = 1080
)

// Config represents the application configuration.
type Config struct {
	API       APIConfig       `json:"api"`
	Assistant AssistantConfig `json:"assistant"`
	Speech    SpeechConfig    `json:"speech"`
	Recording RecordingConfig `json:"recording"`
	Capture   CaptureConfig   `json:"capture"`
	Hotkeys   HotkeyConfig    `json:"hotkeys"`
	Log       LogConfig       `json:"log"`

	// APIKey is read from the environment only and never written to disk.
	APIKey string `json:"-"`

	path   string
	onDisk bool
}

// APIConfig points at the hosted OpenAI-compatible endpoint.
type APIConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`
}

// AssistantConfig configures chat completions.
type AssistantConfig struct {
	Model        string   `json:"model" validate:"required"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  float64  `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens    int      `json:"max_tokens" validate:"gt=0"`
	Timeout      Duration `json:"timeout,omitempty"`
}

// SpeechConfig configures hosted transcription.
type SpeechConfig struct {
	Model    string   `json:"model" validate:"required"`
	Language string   `json:"language,omitempty"`
	Format   string   `json:"format" validate:"oneof=wav flac"`
	Timeout  Duration `json:"timeout,omitempty"`
}

// RecordingConfig configures microphone capture.
type RecordingConfig struct {
	SampleRate  int      `json:"sample_rate" validate:"gte=8000,lte=48000"`
	MaxDuration Duration `json:"max_duration,omitempty"`
}

// CaptureConfig configures screen capture thumbnails.
type CaptureConfig struct {
	ThumbnailWidth  int `json:"thumbnail_width" validate:"gt=0"`
	ThumbnailHeight int `json:"thumbnail_height" validate:"gt=0"`
}

// HotkeyConfig selects the global hotkey backend.
type HotkeyConfig struct {
	Backend string `json:"backend" validate:"oneof=gohook native"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `json:"level" validate:"oneof=debug info warn error"`
	Dir   string `json:"dir,omitempty"`
}

// Duration is a time.Duration that marshals as a Go duration string.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration from the user config directory.
// A .env file in the working directory is honoured for secrets.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from path, applying defaults, environment
// overrides and validation. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.onDisk = true
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	if c.path == "" {
		path, err := configPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		c.path = path
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	c.onDisk = true
	return nil
}

// OnDisk reports whether the configuration was read from or saved to a file.
func (c *Config) OnDisk() bool {
	return c.onDisk
}

// Path returns the file the configuration is bound to.
func (c *Config) Path() string {
	return c.path
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Assistant.Timeout < 0 || c.Speech.Timeout < 0 || c.Recording.MaxDuration < 0 {
		return fmt.Errorf("invalid config: durations must not be negative")
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey when no credential is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) applyEnv() {
	c.APIKey = firstEnv(EnvPrefix+"API_KEY", "GROQ_API_KEY")

	if v := os.Getenv(EnvPrefix + "BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "MODEL"); v != "" {
		c.Assistant.Model = v
	}
	if v := os.Getenv(EnvPrefix + "STT_MODEL"); v != "" {
		c.Speech.Model = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_DIR"); v != "" {
		c.Log.Dir = v
	}
	if v := os.Getenv(EnvPrefix + "HOTKEY_BACKEND"); v != "" {
		c.Hotkeys.Backend = strings.ToLower(v)
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// Dir returns the per-user application directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{BaseURL: DefaultBaseURL},
		Assistant: AssistantConfig{
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
		},
		Speech: SpeechConfig{
			Model:  DefaultSTTModel,
			Format: "wav",
		},
		Recording: RecordingConfig{
			SampleRate:  DefaultSampleRate,
			MaxDuration: Duration(2 * time.Minute),
		},
		Capture: CaptureConfig{
			ThumbnailWidth:  DefaultThumbnailWidth,
			ThumbnailHeight: DefaultThumbnailHeight,
		},
		Hotkeys: HotkeyConfig{Backend: "gohook"},
		Log:     LogConfig{Level: "info"},
	}
}
