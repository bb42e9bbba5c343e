package spectral

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/ersatz/internal/types"
)

const testRate = 44100

func whiteNoise(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.1 * rng.NormFloat64()
	}

	return samples
}

// lowpass zeroes every component above cutoffHz over the whole buffer.
func lowpass(samples []float64, sampleRate int, cutoffHz float64) []float64 {
	n := len(samples)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, samples)

	for i := range coeffs {
		if fft.Freq(i)*float64(sampleRate) > cutoffHz {
			coeffs[i] = 0
		}
	}

	out := fft.Sequence(nil, coeffs)
	for i := range out {
		out[i] /= float64(n)
	}

	return out
}

func TestAnalyzeTooShort(t *testing.T) {
	details, err := Analyze(&types.SampleBuffer{Samples: make([]float64, FrameSize-1), SampleRate: testRate})
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("expected ErrInsufficientSamples, got %v", err)
	}

	if *details != (types.SpectralDetails{}) {
		t.Errorf("expected zero details, got %+v", *details)
	}

	if _, err = Analyze(nil); !errors.Is(err, ErrInsufficientSamples) {
		t.Errorf("expected ErrInsufficientSamples for nil buffer, got %v", err)
	}
}

func TestAnalyzeInvalidSampleRate(t *testing.T) {
	_, err := Analyze(&types.SampleBuffer{Samples: make([]float64, FrameSize), SampleRate: 0})
	if !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	details, err := Analyze(&types.SampleBuffer{Samples: make([]float64, 3*FrameSize), SampleRate: testRate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if details.RmsFull != FloorDb || details.RmsUltrasonic != FloorDb {
		t.Errorf("expected floor levels, got full=%f ultrasonic=%f", details.RmsFull, details.RmsUltrasonic)
	}

	if details.UpperDrop != 0 || details.UltrasonicDrop != 0 {
		t.Errorf("expected zero drops, got upper=%f ultrasonic=%f", details.UpperDrop, details.UltrasonicDrop)
	}

	if details.UltrasonicFlatness != 0 {
		t.Errorf("expected zero flatness, got %f", details.UltrasonicFlatness)
	}
}

func TestAnalyzeWhiteNoise(t *testing.T) {
	details, err := Analyze(&types.SampleBuffer{Samples: whiteNoise(2*testRate, 1), SampleRate: testRate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(details.UltrasonicDrop) > 5 {
		t.Errorf("expected ultrasonic drop near 0, got %f", details.UltrasonicDrop)
	}

	if details.UltrasonicFlatness < 0.7 {
		t.Errorf("expected noise-like flatness, got %f", details.UltrasonicFlatness)
	}

	if details.UpperDrop > 10 {
		t.Errorf("expected gentle upper drop, got %f", details.UpperDrop)
	}

	if details.HighDrop > 48 {
		t.Errorf("expected gentle high drop, got %f", details.HighDrop)
	}
}

func TestAnalyzeHardCutoff(t *testing.T) {
	samples := lowpass(whiteNoise(2*testRate, 2), testRate, 19000)

	details, err := Analyze(&types.SampleBuffer{Samples: samples, SampleRate: testRate})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if details.UltrasonicDrop <= 40 {
		t.Errorf("expected cliff above 40 dB, got %f", details.UltrasonicDrop)
	}

	if details.UltrasonicFlatness >= 0.3 {
		t.Errorf("expected dead ultrasonic band, got flatness %f", details.UltrasonicFlatness)
	}

	// 17-19 kHz is untouched, so the upper band check must stay quiet.
	if details.UpperDrop > 10 {
		t.Errorf("expected small upper drop, got %f", details.UpperDrop)
	}
}

func TestAnalyzeLowSampleRate(t *testing.T) {
	// At 32 kHz the ultrasonic band lies above Nyquist and must read as the floor.
	details, err := Analyze(&types.SampleBuffer{Samples: whiteNoise(2*32000, 3), SampleRate: 32000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if details.RmsUltrasonic != FloorDb {
		t.Errorf("expected floor for ultrasonic band, got %f", details.RmsUltrasonic)
	}

	if details.UltrasonicFlatness != 0 {
		t.Errorf("expected zero flatness when no bins are pooled, got %f", details.UltrasonicFlatness)
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	buf := &types.SampleBuffer{Samples: whiteNoise(testRate, 4), SampleRate: testRate}

	first, err := Analyze(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := Analyze(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *first != *second {
		t.Errorf("expected identical results, got %+v and %+v", *first, *second)
	}
}
