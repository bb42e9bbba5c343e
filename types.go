package ersatz

import (
	"context"

	"github.com/farcloser/ersatz/internal/audit/heuristic"
	"github.com/farcloser/ersatz/internal/types"
)

type (
	// Details are the spectral measurements a score is derived from.
	Details = types.SpectralDetails
	// SampleBuffer is decoded mono audio normalized to [-1, 1].
	SampleBuffer = types.SampleBuffer
	// Rule is one family of mutually exclusive scoring tiers.
	Rule = heuristic.Rule
	// Tier is one threshold of a Rule.
	Tier = heuristic.Tier
)

// Decoder turns encoded audio into mono samples at the container's native rate.
// Implementations must stop after sampleRate*maxSeconds samples when maxSeconds is positive.
type Decoder interface {
	Decode(ctx context.Context, data []byte, maxSeconds int) (*SampleBuffer, error)
}

// Verdict is a coarse reading of the score, for display only.
type Verdict int

const (
	VerdictClean Verdict = iota
	VerdictSuspicious
	VerdictLikelyTranscode
	VerdictTranscode
)

func (v Verdict) String() string {
	switch v {
	case VerdictClean:
		return "clean"
	case VerdictSuspicious:
		return "suspicious"
	case VerdictLikelyTranscode:
		return "likely_transcode"
	case VerdictTranscode:
		return "transcode"
	}

	return "unknown"
}

// MarshalText renders the verdict by name in JSON.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Bands defines the score thresholds of each verdict above clean.
type Bands struct {
	Suspicious      uint
	LikelyTranscode uint
	Transcode       uint
}

// Match returns the verdict for a score.
// Returns (VerdictClean, false) when the score is below the Suspicious threshold.
func (b Bands) Match(score uint) (Verdict, bool) {
	if score >= b.Transcode {
		return VerdictTranscode, true
	}

	if score >= b.LikelyTranscode {
		return VerdictLikelyTranscode, true
	}

	if score >= b.Suspicious {
		return VerdictSuspicious, true
	}

	return VerdictClean, false
}

// Result is the outcome of one analysis.
type Result struct {
	Score   uint     `json:"score"`
	Flags   []string `json:"flags"` // never nil
	Details Details  `json:"details"`
	Verdict Verdict  `json:"verdict"`
}

// Suspicious reports whether any rule fired.
func (r *Result) Suspicious() bool {
	return r.Score > 0
}

// HasFlag reports whether flag was raised.
func (r *Result) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}

	return false
}

func emptyResult() *Result {
	return &Result{Flags: []string{}}
}
