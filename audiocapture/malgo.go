package audiocapture

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// capturer is the miniaudio-backed microphone implementation.
type capturer struct {
	cfg Config

	mu      sync.Mutex
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running bool
}

// New initializes the audio backend for a default-microphone capture.
// It fails when no backend is available.
func New(cfg Config) (Capturer, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return &capturer{cfg: cfg.withDefaults(), ctx: ctx}, nil
}

func (c *capturer) Start(handler AudioHandler) error {
	if handler == nil {
		return ErrNilHandler
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrRunning
	}
	if c.ctx == nil {
		return fmt.Errorf("audiocapture: capturer already stopped")
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(c.cfg.Channels)
	deviceConfig.SampleRate = uint32(c.cfg.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			if chunk := copyChunk(input); chunk != nil {
				handler(chunk)
			}
		},
	}

	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start capture device: %w", err)
	}

	c.device = device
	c.running = true
	return nil
}

func (c *capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.device != nil {
		// Stop drains the device; no callback fires after it returns.
		if stopErr := c.device.Stop(); stopErr != nil {
			err = fmt.Errorf("stop capture device: %w", stopErr)
		}
		c.device.Uninit()
		c.device = nil
	}
	if c.ctx != nil {
		_ = c.ctx.Uninit()
		c.ctx.Free()
		c.ctx = nil
	}

	c.running = false
	return err
}
