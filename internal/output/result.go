// Package output provides shared result serialization for ersatz JSON output.
package output

import (
	"errors"

	"github.com/farcloser/ersatz"
	"github.com/farcloser/ersatz/internal/types"
)

// Analysis status, as reported next to every result.
const (
	StatusAnalyzed          = "analyzed"
	StatusUndecodable       = "undecodable"
	StatusTooShort          = "too_short"
	StatusInvalidSampleRate = "invalid_sample_rate"
	StatusFailed            = "failed"
)

// Status classifies the error returned alongside a result.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusAnalyzed
	case errors.Is(err, ersatz.ErrUndecodable):
		return StatusUndecodable
	case errors.Is(err, ersatz.ErrTooShort):
		return StatusTooShort
	case errors.Is(err, ersatz.ErrInvalidSampleRate):
		return StatusInvalidSampleRate
	}

	return StatusFailed
}

// ResultToMap converts an analysis result into the canonical map structure
// used for JSON and JSONL serialization.
func ResultToMap(result *ersatz.Result, err error) map[string]any {
	flags := make([]any, 0, len(result.Flags))
	for _, flag := range result.Flags {
		flags = append(flags, flag)
	}

	meta := map[string]any{
		"status":  Status(err),
		"score":   result.Score,
		"verdict": result.Verdict.String(),
		"flags":   flags,
		"details": DetailsToMap(&result.Details),
	}

	if err != nil {
		meta["error"] = err.Error()
	}

	return meta
}

// DetailsToMap converts spectral measurements to a map.
func DetailsToMap(details *types.SpectralDetails) map[string]any {
	return map[string]any{
		"rms_full":            details.RmsFull,
		"rms_mid_high":        details.RmsMidHigh,
		"rms_high":            details.RmsHigh,
		"rms_upper":           details.RmsUpper,
		"rms_19_20k":          details.Rms19To20k,
		"rms_ultrasonic":      details.RmsUltrasonic,
		"high_drop":           details.HighDrop,
		"upper_drop":          details.UpperDrop,
		"ultrasonic_drop":     details.UltrasonicDrop,
		"ultrasonic_flatness": details.UltrasonicFlatness,
	}
}
