//nolint:staticcheck // too dumb on Db vs. DB
package types

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes interleaved little-endian integer PCM, as handed over by an external decoder.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

// SampleBuffer is decoded mono audio, normalized to [-1, 1].
// It is owned by a single analysis call.
type SampleBuffer struct {
	Samples    []float64
	SampleRate int
}

// Seconds returns the buffer duration.
func (b *SampleBuffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}

	return float64(len(b.Samples)) / float64(b.SampleRate)
}

/*
Spectral Details Interpretation

All band levels are the L2 norm of FFT magnitudes over the band, averaged across frames, in dB.
They are relative measures: only differences between bands carry meaning.

## upper_drop (10-15 kHz vs. 17-20 kHz)

| UpperDrop   | Interpretation                                 |
|-------------|------------------------------------------------|
| 4-6 dB      | Natural rolloff. Genuine lossless.             |
| 8-12 dB     | Slight damage. Possibly 256k-320k lossy.       |
| 12-20 dB    | Moderate damage. Likely 192k or lower.         |
| 40-70 dB    | Hard cutoff. MP3 128k or worse.                |

## ultrasonic_drop (19-20 kHz vs. 20-22 kHz) and ultrasonic_flatness (19-21 kHz)

| UltrasonicDrop | Flatness | Interpretation                              |
|----------------|----------|---------------------------------------------|
| ~1-2 dB        | > 0.8    | Content extends past 20 kHz. Genuine.       |
| > 40 dB        | < 0.3    | Cliff at 20 kHz. Typical of 320k transcodes.|

Flatness of Gaussian noise magnitudes sits around 0.85; silence and pure tones approach 0.
*/

// SpectralDetails contains the raw band measurements of the spectral analyzer.
type SpectralDetails struct {
	RmsFull       float64 `json:"rms_full"`       // 20 Hz - 20 kHz
	RmsMidHigh    float64 `json:"rms_mid_high"`   // 10 - 15 kHz
	RmsHigh       float64 `json:"rms_high"`       // 15 - 20 kHz
	RmsUpper      float64 `json:"rms_upper"`      // 17 - 20 kHz
	Rms19To20k    float64 `json:"rms_19_20k"`     // 19 - 20 kHz
	RmsUltrasonic float64 `json:"rms_ultrasonic"` // 20 - 22 kHz

	HighDrop       float64 `json:"high_drop"`       // full - high
	UpperDrop      float64 `json:"upper_drop"`      // mid_high - upper
	UltrasonicDrop float64 `json:"ultrasonic_drop"` // 19-20k - ultrasonic

	UltrasonicFlatness float64 `json:"ultrasonic_flatness"` // 19 - 21 kHz, [0, 1]
}
