package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"
	"github.com/mewkiz/flac"

	"github.com/farcloser/ersatz/internal/types"
)

// FLAC decodes a native FLAC stream frame by frame.
func FLAC(data []byte, maxSeconds int) (*types.SampleBuffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidFLAC, err)
	}

	info := stream.Info
	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)

	scale, err := fullScale(int(info.BitsPerSample))
	if err != nil {
		return nil, err
	}

	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", errInvalidFormat, channels, sampleRate)
	}

	dm := newDownmixer(sampleRate, channels, maxSeconds)

frames:
	for !dm.full() {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			// A corrupt tail still leaves usable audio.
			if len(dm.samples) > 0 {
				break
			}

			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		for i := range int(frame.BlockSize) {
			for _, sub := range frame.Subframes {
				if !dm.add(float64(sub.Samples[i]) / scale) {
					break frames
				}
			}
		}
	}

	return dm.buffer(sampleRate)
}
