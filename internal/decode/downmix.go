package decode

import "github.com/farcloser/ersatz/internal/types"

// downmixer averages interleaved channel samples into mono and stops at a sample limit.
type downmixer struct {
	channels int
	limit    int // 0 = unlimited
	sum      float64
	channel  int
	samples  []float64
}

func newDownmixer(sampleRate, channels, maxSeconds int) *downmixer {
	dm := &downmixer{channels: max(channels, 1)}

	if maxSeconds > 0 {
		dm.limit = sampleRate * maxSeconds
		dm.samples = make([]float64, 0, dm.limit)
	}

	return dm
}

// add feeds one interleaved sample. It returns false once the limit is reached.
func (dm *downmixer) add(sample float64) bool {
	if dm.full() {
		return false
	}

	dm.sum += sample
	dm.channel++

	if dm.channel == dm.channels {
		dm.samples = append(dm.samples, dm.sum/float64(dm.channels))
		dm.sum = 0
		dm.channel = 0
	}

	return !dm.full()
}

func (dm *downmixer) full() bool {
	return dm.limit > 0 && len(dm.samples) >= dm.limit
}

func (dm *downmixer) buffer(sampleRate int) (*types.SampleBuffer, error) {
	if len(dm.samples) == 0 {
		return nil, errNoSamples
	}

	return &types.SampleBuffer{Samples: dm.samples, SampleRate: sampleRate}, nil
}
