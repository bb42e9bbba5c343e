package decode

import (
	"bytes"
	"context"
	"fmt"

	"github.com/farcloser/ersatz/internal/integration/ffmpeg"
	"github.com/farcloser/ersatz/internal/integration/ffprobe"
	"github.com/farcloser/ersatz/internal/types"
)

// External decodes any container ffmpeg understands (Ogg, MP4/M4A, AIFF, ...).
// The first audio stream is probed for its native rate and layout, then extracted as 32-bit PCM.
func External(ctx context.Context, data []byte, maxSeconds int) (*types.SampleBuffer, error) {
	probe, err := ffprobe.Probe(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("probing: %w", err)
	}

	stream, err := probe.AudioStream(0)
	if err != nil {
		return nil, err
	}

	sampleRate, err := stream.Rate()
	if err != nil {
		return nil, err
	}

	channels, err := stream.ChannelCount()
	if err != nil {
		return nil, err
	}

	format := types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   types.Depth32,
		Channels:   channels,
	}

	var pcmBuf bytes.Buffer

	if err = ffmpeg.ExtractStream(ctx, bytes.NewReader(data), &pcmBuf, 0, &format, maxSeconds); err != nil {
		return nil, fmt.Errorf("extracting %s: %w", stream.CodecName, err)
	}

	return PCM(&pcmBuf, format, maxSeconds)
}
