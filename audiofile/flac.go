package audiofile

import (
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

const flacBlockSize = 4096

func encodeFLAC(w writeSeeker, samples []int16, f Format) error {
	if f.Channels != 1 {
		return fmt.Errorf("flac: only mono is supported, got %d channels", f.Channels)
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  flacBlockSize,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(f.SampleRate),
		NChannels:     1,
		BitsPerSample: bitsPerSample,
	}
	// The encoder closes writers that implement io.Closer; Write owns the file.
	enc, err := flac.NewEncoder(struct{ writeSeeker }{w}, info)
	if err != nil {
		return fmt.Errorf("create flac encoder: %w", err)
	}

	for start := 0; start < len(samples); start += flacBlockSize {
		end := min(start+flacBlockSize, len(samples))
		if err := writeFLACFrame(enc, samples[start:end], f.SampleRate); err != nil {
			enc.Close()
			return err
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize flac: %w", err)
	}
	return nil
}

func writeFLACFrame(enc *flac.Encoder, block []int16, sampleRate int) error {
	samples32 := make([]int32, len(block))
	for i, s := range block {
		samples32[i] = int32(s)
	}

	fr := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(block)),
			SampleRate:    uint32(sampleRate),
			Channels:      frame.ChannelsMono,
			BitsPerSample: bitsPerSample,
		},
		Subframes: []*frame.Subframe{{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples32,
			NSamples:  len(block),
		}},
	}

	if err := enc.WriteFrame(fr); err != nil {
		return fmt.Errorf("write flac frame: %w", err)
	}
	return nil
}
