package ersatz

import (
	"github.com/farcloser/ersatz/internal/audit/heuristic"
	"github.com/farcloser/ersatz/internal/decode"
	"github.com/farcloser/ersatz/internal/integration/binary"
)

// DefaultMaxSeconds is how much audio is decoded when Options.MaxSeconds is zero.
const DefaultMaxSeconds = 15

// Options configures the analysis. Zero values fall back to defaults.
type Options struct {
	Decoder    Decoder // default: DefaultDecoder()
	MaxSeconds int     // default 15, negative means the whole stream
	Rules      []Rule  // default: DefaultRules()
	Verdicts   Bands   // default: 20 / 50 / 100
}

// DefaultOptions returns options with every default filled in.
func DefaultOptions() Options {
	opts := Options{}
	applyDefaults(&opts)

	return opts
}

// DefaultRules returns the stock scoring table. The slice is a fresh copy and can be edited.
func DefaultRules() []Rule {
	return heuristic.DefaultRules()
}

// DefaultDecoder decodes WAV, FLAC and MP3 natively, and hands everything else to ffmpeg
// when both ffmpeg and ffprobe are on PATH.
func DefaultDecoder() Decoder {
	_, hasFFmpeg := binary.Available("ffmpeg")
	_, hasFFprobe := binary.Available("ffprobe")

	return decode.Auto{External: hasFFmpeg && hasFFprobe}
}

func applyDefaults(opts *Options) {
	if opts.Decoder == nil {
		opts.Decoder = DefaultDecoder()
	}

	if opts.MaxSeconds == 0 {
		opts.MaxSeconds = DefaultMaxSeconds
	}

	if opts.Rules == nil {
		opts.Rules = heuristic.DefaultRules()
	}

	if opts.Verdicts == (Bands{}) {
		opts.Verdicts = Bands{Suspicious: 20, LikelyTranscode: 50, Transcode: 100}
	}
}
