// Package audiofile writes captured PCM audio into upload-ready containers.
package audiofile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Format describes raw signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// Container names accepted by Write.
const (
	WAV  = "wav"
	FLAC = "flac"
)

const bitsPerSample = 16

// Ext returns the file extension for a container, including the dot.
func Ext(container string) string {
	if container == FLAC {
		return ".flac"
	}
	return ".wav"
}

// Write encodes pcm into the named container at path, truncating any
// existing file. The file is synced before Write returns.
func Write(path, container string, pcm []byte, f Format) error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		f.Channels = 1
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}

	samples := pcmToInt16(pcm)
	switch container {
	case FLAC:
		err = encodeFLAC(file, samples, f)
	case WAV, "":
		err = encodeWAV(file, samples, f)
	default:
		err = fmt.Errorf("unsupported container %q", container)
	}
	if err != nil {
		file.Close()
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync audio file: %w", err)
	}
	return file.Close()
}

func pcmToInt16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

type writeSeeker interface {
	io.Writer
	io.Seeker
}
