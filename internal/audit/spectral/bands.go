package spectral

import (
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// Band is a named frequency interval. LowHz must be below HighHz; HighHz is clamped to Nyquist.
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
}

//nolint:gochecknoglobals // configuration data, effectively const
var (
	bandFull       = Band{Name: "full", LowHz: 20, HighHz: 20000}
	bandMidHigh    = Band{Name: "mid_high", LowHz: 10000, HighHz: 15000}
	bandHigh       = Band{Name: "high", LowHz: 15000, HighHz: 20000}
	bandUpper      = Band{Name: "upper", LowHz: 17000, HighHz: 20000}
	band19To20k    = Band{Name: "band_19_20k", LowHz: 19000, HighHz: 20000}
	bandUltrasonic = Band{Name: "ultrasonic", LowHz: 20000, HighHz: 22000}

	// bandFlatness is where magnitudes are pooled for the flatness estimate.
	bandFlatness = Band{Name: "flatness", LowHz: 19000, HighHz: 21000}
)

// Bands returns the measured bands, in the order their averaged energies are reported.
func Bands() []Band {
	return []Band{bandFull, bandMidHigh, bandHigh, bandUpper, band19To20k, bandUltrasonic}
}

// binRange converts a band to an inclusive bin interval of a FrameSize spectrum.
// ok is false when the interval is empty (e.g. the band starts above Nyquist).
func binRange(band Band, sampleRate, spectrumLen int) (low, high int, ok bool) {
	resolution := float64(sampleRate) / FrameSize

	low = int(band.LowHz / resolution)
	high = min(int(band.HighHz/resolution), FrameSize/2, spectrumLen-1)

	if low < 0 || low > high {
		return 0, 0, false
	}

	return low, high, true
}

// bandEnergy is the L2 norm of magnitudes over the band bins of one spectrum.
// scratch is reused across calls to avoid an allocation per band and frame.
func bandEnergy(scratch []float64, spectrum []complex128, sampleRate int, band Band) (float64, []float64) {
	scratch = appendMagnitudes(scratch[:0], spectrum, sampleRate, band)
	if len(scratch) == 0 {
		return 0, scratch
	}

	return floats.Norm(scratch, 2), scratch
}

// appendMagnitudes appends the magnitude of every band bin to pool.
func appendMagnitudes(pool []float64, spectrum []complex128, sampleRate int, band Band) []float64 {
	low, high, ok := binRange(band, sampleRate, len(spectrum))
	if !ok {
		return pool
	}

	for _, c := range spectrum[low : high+1] {
		pool = append(pool, cmplx.Abs(c))
	}

	return pool
}
