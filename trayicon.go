package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const trayIconSize = 32

// trayIcon renders a filled ring so the binary ships without image assets.
func trayIcon() ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, trayIconSize, trayIconSize))
	c := float64(trayIconSize-1) / 2
	fill := color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}

	for y := 0; y < trayIconSize; y++ {
		for x := 0; x < trayIconSize; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			d := dx*dx + dy*dy
			if d <= c*c && d >= (c/2)*(c/2) {
				img.SetNRGBA(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
