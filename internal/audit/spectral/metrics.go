package spectral

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// FloorDb is reported for non-positive energies. Roughly the 16-bit quantization floor.
	FloorDb = -96.0

	flatnessEpsilon = 1e-10
)

func toDb(value float64) float64 {
	if value <= 0 {
		return FloorDb
	}

	return 20 * math.Log10(value)
}

// flatness computes the Wiener entropy of pooled magnitudes: geometric mean / arithmetic mean.
// Near 1.0 for noise, near 0.0 for a pure tone or silence.
func flatness(magnitudes []float64) float64 {
	if len(magnitudes) == 0 {
		return 0
	}

	arithmeticMean := stat.Mean(magnitudes, nil)
	if arithmeticMean <= 0 {
		return 0
	}

	var logSum float64
	for _, m := range magnitudes {
		logSum += math.Log(m + flatnessEpsilon)
	}

	geometricMean := math.Exp(logSum / float64(len(magnitudes)))

	return geometricMean / arithmeticMean
}
