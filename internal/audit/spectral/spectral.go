package spectral

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/farcloser/ersatz/internal/types"
)

var (
	// ErrInsufficientSamples is returned when the buffer holds less than one frame.
	ErrInsufficientSamples = errors.New("fewer samples than one analysis frame")
	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("invalid sample rate")
)

// Analyze measures how energy is distributed across the high-frequency bands of buf.
// Band energies are averaged across overlapping Hann-windowed frames, then converted to dB.
// On error the returned details are zero-valued, never nil.
func Analyze(buf *types.SampleBuffer) (*types.SpectralDetails, error) {
	if buf == nil || len(buf.Samples) < FrameSize {
		return &types.SpectralDetails{}, ErrInsufficientSamples
	}

	if buf.SampleRate <= 0 {
		return &types.SpectralDetails{}, fmt.Errorf("%w: %d", ErrInvalidSampleRate, buf.SampleRate)
	}

	bands := Bands()
	energies := make([]float64, len(bands))

	fft := fourier.NewCmplxFFT(FrameSize)
	window := makeHannWindow(FrameSize)
	coeffs := make([]complex128, FrameSize)
	scratch := make([]float64, 0, FrameSize/2+1)

	count := frameCount(len(buf.Samples))
	flatLow, flatHigh, _ := binRange(bandFlatness, buf.SampleRate, FrameSize)
	pool := make([]float64, 0, count*(flatHigh-flatLow+1))

	for _, frame := range frames(buf.Samples, window) {
		coeffs = fft.Coefficients(coeffs, frame)

		for i, band := range bands {
			var energy float64

			energy, scratch = bandEnergy(scratch, coeffs, buf.SampleRate, band)
			energies[i] += energy
		}

		pool = appendMagnitudes(pool, coeffs, buf.SampleRate, bandFlatness)
	}

	for i := range energies {
		energies[i] /= float64(count)
	}

	details := &types.SpectralDetails{
		RmsFull:       toDb(energies[0]),
		RmsMidHigh:    toDb(energies[1]),
		RmsHigh:       toDb(energies[2]),
		RmsUpper:      toDb(energies[3]),
		Rms19To20k:    toDb(energies[4]),
		RmsUltrasonic: toDb(energies[5]),

		UltrasonicFlatness: flatness(pool),
	}

	// Positive drops mean the higher band is quieter.
	details.HighDrop = details.RmsFull - details.RmsHigh
	details.UpperDrop = details.RmsMidHigh - details.RmsUpper
	details.UltrasonicDrop = details.Rms19To20k - details.RmsUltrasonic

	return details, nil
}
