package decode

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/go-mp3"

	"github.com/farcloser/ersatz/internal/types"
)

// MP3 decodes an MPEG-1/2 layer III stream. go-mp3 always emits 16-bit little-endian stereo.
func MP3(data []byte, maxSeconds int) (*types.SampleBuffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidMP3, err)
	}

	return PCM(dec, types.PCMFormat{
		SampleRate: dec.SampleRate(),
		BitDepth:   types.Depth16,
		Channels:   2,
	}, maxSeconds)
}
