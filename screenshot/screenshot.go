// Package screenshot captures the screen and encodes it for the view.
package screenshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/kbinani/screenshot"
	"golang.org/x/image/draw"

	"go.aimuz.me/glimpse/internal/types"
)

// ErrNoDisplay is returned when no screen source is available.
var ErrNoDisplay = errors.New("no active display")

// Source enumerates and captures displays.
type Source interface {
	NumDisplays() int
	Bounds(display int) image.Rectangle
	Capture(display int) (*image.RGBA, error)
}

// Displays returns the Source backed by the operating system.
func Displays() Source { return osDisplays{} }

type osDisplays struct{}

func (osDisplays) NumDisplays() int                   { return screenshot.NumActiveDisplays() }
func (osDisplays) Bounds(i int) image.Rectangle       { return screenshot.GetDisplayBounds(i) }
func (osDisplays) Capture(i int) (*image.RGBA, error) { return screenshot.CaptureDisplay(i) }

// Capturer grabs the first display and produces a bounded PNG thumbnail.
type Capturer struct {
	src       Source
	maxWidth  int
	maxHeight int
}

// NewCapturer returns a Capturer producing images no larger than maxWidth x maxHeight.
func NewCapturer(src Source, maxWidth, maxHeight int) *Capturer {
	return &Capturer{src: src, maxWidth: maxWidth, maxHeight: maxHeight}
}

// Capture captures the first available display.
// It returns ErrNoDisplay when there is nothing to capture.
func (c *Capturer) Capture() (types.Screenshot, error) {
	if c.src.NumDisplays() == 0 {
		return types.Screenshot{}, ErrNoDisplay
	}

	img, err := c.src.Capture(0)
	if err != nil {
		return types.Screenshot{}, fmt.Errorf("capture display: %w", err)
	}
	if img == nil || img.Bounds().Empty() {
		return types.Screenshot{}, ErrNoDisplay
	}

	thumb := Thumbnail(img, c.maxWidth, c.maxHeight)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return types.Screenshot{}, fmt.Errorf("encode png: %w", err)
	}

	b := thumb.Bounds()
	return types.Screenshot{
		Data:   base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// Thumbnail scales img down to fit within maxWidth x maxHeight, keeping the
// aspect ratio. Images that already fit are returned unchanged.
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || maxHeight <= 0 || (w <= maxWidth && h <= maxHeight) {
		return img
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	tw := max(1, int(math.Round(float64(w)*scale)))
	th := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// PrimaryBounds returns the bounds of the first display, or an empty
// rectangle when none is active.
func PrimaryBounds(src Source) image.Rectangle {
	if src.NumDisplays() == 0 {
		return image.Rectangle{}
	}
	return src.Bounds(0)
}
