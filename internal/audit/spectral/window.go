package spectral

import (
	"iter"
	"math"
)

const (
	// FrameSize is the number of samples per analysis frame (and FFT size).
	FrameSize = 8192
	// HopSize is the distance between consecutive frame starts (50% overlap).
	HopSize = FrameSize / 2
)

func makeHannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return window
}

// frameCount returns how many full frames fit in n samples. Callers must ensure n >= FrameSize.
func frameCount(n int) int {
	return max(1, (n-FrameSize)/HopSize+1)
}

// frames lazily yields every windowed frame of samples as a complex sequence with a zero imaginary part.
// The yielded slice is reused between iterations; each range over the sequence starts from the first frame.
func frames(samples, window []float64) iter.Seq2[int, []complex128] {
	return func(yield func(int, []complex128) bool) {
		if len(samples) < FrameSize {
			return
		}

		buf := make([]complex128, FrameSize)
		count := frameCount(len(samples))

		for k := range count {
			start := k * HopSize
			for i := range FrameSize {
				buf[i] = complex(samples[start+i]*window[i], 0)
			}

			if !yield(k, buf) {
				return
			}
		}
	}
}
