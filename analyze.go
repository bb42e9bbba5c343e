// Package ersatz detects audio files distributed as lossless that were transcoded from a lossy source.
//
// Lossy encoders discard high-frequency content. ersatz measures energy in a handful of bands between
// 10 kHz and 22 kHz over the first seconds of a file, and scores how steeply that energy falls off.
package ersatz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ersatz/internal/audit/heuristic"
	"github.com/farcloser/ersatz/internal/audit/spectral"
)

/*
Usage:

data, _ := os.ReadFile("album/01.flac")
result, err := ersatz.Analyze(ctx, data, 0, ersatz.Options{})
if errors.Is(err, ersatz.ErrUndecodable) {
    // result is zero-valued: score 0, no flags
}
fmt.Println(result.Score, result.Verdict, result.Flags)

// Tuned rules
opts := ersatz.DefaultOptions()
opts.Rules = opts.Rules[:2] // only the drop families
result, err = ersatz.Analyze(ctx, data, 0, opts)

// Already decoded audio
result, err = ersatz.AnalyzeSamples(samples, 44100, ersatz.Options{})
*/

var (
	// ErrUndecodable is returned when no decoder could produce samples.
	ErrUndecodable = errors.New("undecodable audio")
	// ErrTooShort is returned when fewer samples than one analysis frame were decoded.
	ErrTooShort = errors.New("audio too short for analysis")
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// Analyze decodes data and scores how likely it is to be a lossy transcode.
//
// The returned result is never nil. On ErrUndecodable or ErrTooShort it is zero-valued (score 0,
// empty flags), so callers that only look at the result see an unsuspicious file.
// Cancellation and decoder timeouts are returned as is, never as ErrUndecodable.
// declaredSampleRate is the rate the caller believes the file has; it is currently unused.
func Analyze(ctx context.Context, data []byte, declaredSampleRate int, opts Options) (*Result, error) {
	applyDefaults(&opts)

	buf, err := opts.Decoder.Decode(ctx, data, opts.MaxSeconds)
	if err != nil {
		// Interrupted or timed out decodes say nothing about the data.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return emptyResult(), ctxErr
		}

		if errors.Is(err, fault.ErrTimeout) {
			return emptyResult(), err
		}

		return emptyResult(), fmt.Errorf("%w: %w", ErrUndecodable, err)
	}

	if buf == nil || len(buf.Samples) == 0 {
		return emptyResult(), ErrUndecodable
	}

	slog.Debug("ersatz.Analyze",
		"sample_rate", buf.SampleRate,
		"declared_sample_rate", declaredSampleRate,
		"seconds", buf.Seconds(),
	)

	return analyze(buf, opts)
}

// AnalyzeSamples scores already decoded mono samples normalized to [-1, 1].
// Options.Decoder and Options.MaxSeconds are ignored.
func AnalyzeSamples(samples []float64, sampleRate int, opts Options) (*Result, error) {
	if opts.Decoder == nil {
		opts.Decoder = noDecoder{}
	}

	applyDefaults(&opts)

	return analyze(&SampleBuffer{Samples: samples, SampleRate: sampleRate}, opts)
}

func analyze(buf *SampleBuffer, opts Options) (*Result, error) {
	details, err := spectral.Analyze(buf)
	if err != nil {
		switch {
		case errors.Is(err, spectral.ErrInsufficientSamples):
			return emptyResult(), fmt.Errorf("%w: %d samples", ErrTooShort, len(buf.Samples))
		case errors.Is(err, spectral.ErrInvalidSampleRate):
			return emptyResult(), fmt.Errorf("%w: %d", ErrInvalidSampleRate, buf.SampleRate)
		default:
			return emptyResult(), err
		}
	}

	score, flags := heuristic.Evaluate(details, opts.Rules)
	verdict, _ := opts.Verdicts.Match(score)

	return &Result{
		Score:   score,
		Flags:   flags,
		Details: *details,
		Verdict: verdict,
	}, nil
}

// noDecoder keeps applyDefaults from probing PATH when no decoding will happen.
type noDecoder struct{}

func (noDecoder) Decode(context.Context, []byte, int) (*SampleBuffer, error) {
	return nil, ErrUndecodable
}
