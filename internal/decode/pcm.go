package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/ersatz/internal/types"
)

const (
	MaxValue16 = 32768.0      // 2^15, 16-bit signed PCM normalization divisor
	MaxValue24 = 8388608.0    // 2^23, 24-bit signed PCM normalization divisor
	MaxValue32 = 2147483648.0 // 2^31, 32-bit signed PCM normalization divisor
)

// fullScale returns the normalization divisor for signed integer samples of the given width.
func fullScale(bits int) (float64, error) {
	if bits < 2 || bits > 32 {
		return 0, fmt.Errorf("%w: %d", errUnsupportedBitDepth, bits)
	}

	return float64(uint64(1) << (bits - 1)), nil
}

// PCM decodes raw interleaved little-endian signed PCM from r into mono samples.
func PCM(r io.Reader, format types.PCMFormat, maxSeconds int) (*types.SampleBuffer, error) {
	bytesPerSample := int(format.BitDepth / 8) //nolint:gosec // bit depth is a small constant
	numChannels := int(format.Channels)        //nolint:gosec // channel count is small

	if numChannels <= 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", errInvalidFormat, numChannels, format.SampleRate)
	}

	var maxVal float64

	switch format.BitDepth {
	case types.Depth16:
		maxVal = MaxValue16
	case types.Depth24:
		maxVal = MaxValue24
	case types.Depth32:
		maxVal = MaxValue32
	default:
		return nil, fmt.Errorf("%w: %d", errUnsupportedBitDepth, format.BitDepth)
	}

	frameSize := bytesPerSample * numChannels
	readBuf := make([]byte, frameSize*4096)
	dm := newDownmixer(format.SampleRate, numChannels, maxSeconds)

	for !dm.full() {
		n, err := io.ReadFull(r, readBuf)
		if n > 0 {
			data := readBuf[:(n/bytesPerSample)*bytesPerSample]

			for i := 0; i < len(data) && !dm.full(); i += bytesPerSample {
				var raw int32

				switch format.BitDepth {
				case types.Depth16:
					raw = int32(int16(binary.LittleEndian.Uint16(data[i:])))
				case types.Depth24:
					raw = int32(data[i]) | int32(data[i+1])<<8 | int32(data[i+2])<<16
					if raw&0x800000 != 0 {
						raw |= ^0xFFFFFF
					}
				case types.Depth32:
					raw = int32(binary.LittleEndian.Uint32(data[i:])) //nolint:gosec // two's complement reinterpretation
				}

				dm.add(float64(raw) / maxVal)
			}
		}

		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}
	}

	return dm.buffer(format.SampleRate)
}
