//nolint:tagliatelle
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ersatz/internal/integration/binary"
)

var (
	errNoAudioStream     = errors.New("no audio stream found")
	errInvalidSampleRate = errors.New("invalid sample rate from probe")
	errInvalidChannels   = errors.New("invalid channel count from probe")
)

// Result contains the subset of ffprobe output needed to extract PCM.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one stream of the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`            // flac, alac, aac, opus
	CodecType  string `json:"codec_type"`            // audio
	SampleRate string `json:"sample_rate,omitempty"` // 44100
	Channels   int    `json:"channels,omitempty"`    // 2
	BitRate    string `json:"bit_rate,omitempty"`    // lossy only, usually
}

// Format is container-level information.
type Format struct {
	FormatName string `json:"format_name"` // e.g. "flac", "mov,mp4,m4a,3gp,3g2,mj2"
	Duration   string `json:"duration,omitempty"`
	ProbeScore int    `json:"probe_score"` // 0-100, 100 = certain
}

// AudioStream returns the index-th audio stream (0-based, counting audio streams only).
func (r *Result) AudioStream(index int) (*Stream, error) {
	audioCount := 0

	for i := range r.Streams {
		if r.Streams[i].CodecType != "audio" {
			continue
		}

		if audioCount == index {
			return &r.Streams[i], nil
		}

		audioCount++
	}

	return nil, fmt.Errorf("%w: index %d (%d audio streams)", errNoAudioStream, index, audioCount)
}

// Rate returns the parsed sample rate.
func (s *Stream) Rate() (int, error) {
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidSampleRate, s.SampleRate)
	}

	return rate, nil
}

// ChannelCount returns the validated channel count.
func (s *Stream) ChannelCount() (uint, error) {
	if s.Channels <= 0 {
		return 0, fmt.Errorf("%w: %d", errInvalidChannels, s.Channels)
	}

	return uint(s.Channels), nil
}

// Probe runs ffprobe over input (fed on stdin) and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, input io.Reader) (*Result, error) {
	slog.Debug("ffprobe.Probe", "stage", "start")

	ffprobePath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-i", "pipe:0",
	)

	var stderr bytes.Buffer

	cmd.Stdin = input
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffprobe.Probe", "stage", "timeout")

			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffprobe.Probe", "stage", "error")

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	var result Result
	if err = json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}
