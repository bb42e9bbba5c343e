// Package decode turns compressed or container-wrapped audio into mono samples for spectral analysis.
//
// WAV, FLAC and MP3 are decoded natively. Any other container can be handed to ffmpeg when it is
// installed. No resampling ever happens: it would low-pass the very band being measured.
package decode

import (
	"context"
	"errors"
	"log/slog"

	"github.com/farcloser/ersatz/internal/types"
)

var (
	errUnsupportedContainer = errors.New("unsupported container")
	errUnsupportedBitDepth  = errors.New("unsupported bit depth")
	errUnsupportedEncoding  = errors.New("unsupported sample encoding")
	errInvalidFormat        = errors.New("invalid pcm format")
	errInvalidWAV           = errors.New("invalid wav stream")
	errInvalidFLAC          = errors.New("invalid flac stream")
	errInvalidMP3           = errors.New("invalid mp3 stream")
	errNoSamples            = errors.New("no decodable samples")
)

// Auto picks a decoder from the leading bytes of the data.
type Auto struct {
	// External enables the ffmpeg fallback, for unknown containers and failed native decodes.
	External bool
}

// Decode returns at most sampleRate*maxSeconds mono samples (no cap when maxSeconds <= 0).
func (a Auto) Decode(ctx context.Context, data []byte, maxSeconds int) (*types.SampleBuffer, error) {
	container := Sniff(data)

	slog.Debug("decode.Auto", "container", container.String(), "bytes", len(data))

	var (
		buf *types.SampleBuffer
		err error
	)

	switch container {
	case ContainerWAV:
		buf, err = WAV(data, maxSeconds)
	case ContainerFLAC:
		buf, err = FLAC(data, maxSeconds)
	case ContainerMP3:
		buf, err = MP3(data, maxSeconds)
	default:
		err = errUnsupportedContainer
	}

	if err == nil {
		return buf, nil
	}

	if !a.External {
		return nil, err
	}

	slog.Debug("decode.Auto", "container", container.String(), "fallback", "ffmpeg", "error", err)

	buf, extErr := External(ctx, data, maxSeconds)
	if extErr != nil {
		return nil, errors.Join(err, extErr)
	}

	return buf, nil
}
