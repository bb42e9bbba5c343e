package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"
	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	"github.com/farcloser/ersatz/internal/types"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// wavExtensibleFmt is the fmt chunk layout of WAVE_FORMAT_EXTENSIBLE.
type wavExtensibleFmt struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	ExtraSize     uint16
	ValidBits     uint16
	ChannelMask   uint32
	SubFormat     [16]byte
}

// wavSubFormat returns the format code held in the first two bytes of the extensible SubFormat GUID.
func wavSubFormat(data []byte) (uint16, error) {
	parser := riff.New(bytes.NewReader(data))
	if err := parser.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %w", errInvalidWAV, err)
	}

	for {
		chunk, err := parser.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("%w: no fmt chunk: %w", errInvalidWAV, err)
		}

		if chunk.ID != riff.FmtID {
			chunk.Drain()

			continue
		}

		var format wavExtensibleFmt
		if chunk.Size < binary.Size(format) {
			return 0, fmt.Errorf("%w: extensible fmt chunk of %d bytes", errInvalidWAV, chunk.Size)
		}

		if err = chunk.ReadLE(&format); err != nil {
			return 0, fmt.Errorf("%w: %w", errInvalidWAV, err)
		}

		return binary.LittleEndian.Uint16(format.SubFormat[:2]), nil
	}
}

// WAV decodes integer PCM wave data.
func WAV(data []byte, maxSeconds int) (*types.SampleBuffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errInvalidWAV
	}

	switch dec.WavAudioFormat {
	case wavFormatPCM:
	case wavFormatExtensible:
		subFormat, err := wavSubFormat(data)
		if err != nil {
			return nil, err
		}

		// Float and compressed payloads are left to ffmpeg.
		if subFormat != wavFormatPCM {
			return nil, fmt.Errorf("%w: extensible wav sub-format %#x", errUnsupportedEncoding, subFormat)
		}
	default:
		return nil, fmt.Errorf("%w: wav format tag %#x", errUnsupportedEncoding, dec.WavAudioFormat)
	}

	bits := int(dec.BitDepth)
	channels := int(dec.NumChans)
	sampleRate := int(dec.SampleRate)

	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", errInvalidFormat, channels, sampleRate)
	}

	// 8-bit wave is unsigned, everything wider is signed.
	var offset float64

	scale, err := fullScale(bits)
	if err != nil {
		return nil, err
	}

	if bits == 8 {
		offset = scale
	}

	buf := &audio.IntBuffer{
		Format:         dec.Format(),
		Data:           make([]int, 4096*channels),
		SourceBitDepth: bits,
	}

	dm := newDownmixer(sampleRate, channels, maxSeconds)

	for !dm.full() {
		n, err := dec.PCMBuffer(buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		if n == 0 {
			break
		}

		for _, v := range buf.Data[:n] {
			if !dm.add((float64(v) - offset) / scale) {
				break
			}
		}
	}

	return dm.buffer(sampleRate)
}
