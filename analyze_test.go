package ersatz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/farcloser/primordium/fault"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/ersatz/internal/decode"
)

const testRate = 44100

func whiteNoise(n int) []float64 {
	rng := rand.New(rand.NewPCG(7, 11))

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.1 * rng.NormFloat64()
	}

	return samples
}

func lowpass(samples []float64, cutoffHz float64) []float64 {
	fft := fourier.NewFFT(len(samples))
	coeffs := fft.Coefficients(nil, samples)

	for i := range coeffs {
		if fft.Freq(i)*testRate > cutoffHz {
			coeffs[i] = 0
		}
	}

	out := fft.Sequence(nil, coeffs)
	for i := range out {
		out[i] /= float64(len(samples))
	}

	return out
}

type stubDecoder struct {
	buf *SampleBuffer
	err error

	maxSeconds int
}

func (s *stubDecoder) Decode(_ context.Context, _ []byte, maxSeconds int) (*SampleBuffer, error) {
	s.maxSeconds = maxSeconds

	return s.buf, s.err
}

func assertZero(t *testing.T, result *Result) {
	t.Helper()

	if result == nil {
		t.Fatal("expected non-nil result")
	}

	if result.Score != 0 || len(result.Flags) != 0 || result.Details != (Details{}) || result.Verdict != VerdictClean {
		t.Errorf("expected zero-valued result, got %+v", *result)
	}

	if result.Flags == nil {
		t.Error("flags must be empty, not nil")
	}
}

func TestWhiteNoiseIsClean(t *testing.T) {
	result, err := AnalyzeSamples(whiteNoise(testRate*2), testRate, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score >= 20 {
		t.Errorf("expected score < 20 for white noise, got %d (%v)", result.Score, result.Flags)
	}

	if result.Verdict != VerdictClean {
		t.Errorf("expected clean verdict, got %s", result.Verdict)
	}
}

func TestHardCutoffIsFlagged(t *testing.T) {
	result, err := AnalyzeSamples(lowpass(whiteNoise(testRate*2), 19000), testRate, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score < 55 {
		t.Errorf("expected score >= 55, got %d (%v)", result.Score, result.Flags)
	}

	for _, flag := range []string{"cliff_at_20khz", "dead_ultrasonic_band"} {
		if !result.HasFlag(flag) {
			t.Errorf("expected flag %s in %v", flag, result.Flags)
		}
	}

	if result.Verdict < VerdictLikelyTranscode {
		t.Errorf("expected at least likely_transcode, got %s", result.Verdict)
	}
}

func TestAnalyzeTooShort(t *testing.T) {
	result, err := AnalyzeSamples(make([]float64, 8191), testRate, Options{})
	if !errors.Is(err, ErrTooShort) {
		t.Fatalf("expected ErrTooShort, got %v", err)
	}

	assertZero(t, result)
}

func TestAnalyzeInvalidRate(t *testing.T) {
	result, err := AnalyzeSamples(make([]float64, 10000), 0, Options{})
	if !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}

	assertZero(t, result)
}

func TestAnalyzeUndecodable(t *testing.T) {
	decoder := &stubDecoder{err: errors.New("boom")}

	result, err := Analyze(context.Background(), []byte("junk"), 0, Options{Decoder: decoder})
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}

	assertZero(t, result)

	if decoder.maxSeconds != DefaultMaxSeconds {
		t.Errorf("expected decoder capped at %d seconds, got %d", DefaultMaxSeconds, decoder.maxSeconds)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decoder := &stubDecoder{err: fmt.Errorf("%w: signal: killed", fault.ErrCommandFailure)}

	result, err := Analyze(ctx, []byte("data"), 0, Options{Decoder: decoder})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if errors.Is(err, ErrUndecodable) {
		t.Errorf("cancellation must not be reported as undecodable: %v", err)
	}

	assertZero(t, result)
}

func TestAnalyzeDecoderTimeout(t *testing.T) {
	decoder := &stubDecoder{err: fmt.Errorf("%w: after 1m0s", fault.ErrTimeout)}

	result, err := Analyze(context.Background(), []byte("data"), 0, Options{Decoder: decoder})
	if !errors.Is(err, fault.ErrTimeout) {
		t.Fatalf("expected fault.ErrTimeout, got %v", err)
	}

	if errors.Is(err, ErrUndecodable) {
		t.Errorf("timeout must not be reported as undecodable: %v", err)
	}

	assertZero(t, result)
}

func TestAnalyzeEmptyDecode(t *testing.T) {
	result, err := Analyze(context.Background(), nil, 0, Options{Decoder: &stubDecoder{buf: &SampleBuffer{SampleRate: testRate}}})
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}

	assertZero(t, result)
}

func TestAnalyzeUnknownContainer(t *testing.T) {
	// Native decoders only: garbage cannot reach ffmpeg.
	opts := Options{Decoder: decode.Auto{}}

	result, err := Analyze(context.Background(), []byte("this is not audio"), 44100, opts)
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("expected ErrUndecodable, got %v", err)
	}

	assertZero(t, result)
}

func TestAnalyzeUsesDecoder(t *testing.T) {
	decoder := &stubDecoder{buf: &SampleBuffer{Samples: whiteNoise(testRate), SampleRate: testRate}}

	result, err := Analyze(context.Background(), []byte("ignored"), 0, Options{Decoder: decoder, MaxSeconds: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if decoder.maxSeconds != 3 {
		t.Errorf("expected MaxSeconds to reach the decoder, got %d", decoder.maxSeconds)
	}

	if result.Details.RmsFull == 0 {
		t.Error("expected populated details")
	}
}

func TestCustomRules(t *testing.T) {
	rules := []Rule{{
		Name:   "always",
		Metric: func(d *Details) float64 { return d.RmsFull },
		Tiers:  []Tier{{Threshold: -1000, Score: 120, Flag: "always"}},
	}}

	result, err := AnalyzeSamples(whiteNoise(testRate), testRate, Options{Rules: rules})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Score != 120 || !result.HasFlag("always") || result.Verdict != VerdictTranscode {
		t.Errorf("unexpected result %+v", *result)
	}
}

func TestBandsMatch(t *testing.T) {
	bands := DefaultOptions().Verdicts

	cases := []struct {
		score    uint
		expected Verdict
		detected bool
	}{
		{0, VerdictClean, false},
		{19, VerdictClean, false},
		{20, VerdictSuspicious, true},
		{49, VerdictSuspicious, true},
		{50, VerdictLikelyTranscode, true},
		{99, VerdictLikelyTranscode, true},
		{100, VerdictTranscode, true},
		{145, VerdictTranscode, true},
	}

	for _, tc := range cases {
		verdict, detected := bands.Match(tc.score)
		if verdict != tc.expected || detected != tc.detected {
			t.Errorf("Match(%d) = (%s, %v), want (%s, %v)", tc.score, verdict, detected, tc.expected, tc.detected)
		}
	}
}

func TestResultJSON(t *testing.T) {
	raw, err := json.Marshal(emptyResult())
	if err != nil {
		t.Fatal(err)
	}

	out := string(raw)

	for _, want := range []string{`"score":0`, `"flags":[]`, `"verdict":"clean"`, `"ultrasonic_flatness":0`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}
