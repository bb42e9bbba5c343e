package ffmpeg

import (
	"strconv"

	"github.com/farcloser/ersatz/internal/types"
)

// bitDepthToSpec returns the raw output format: 32 = s32le, 24 = s24le, 16 = s16le.
func bitDepthToSpec(bitDepth types.BitDepth) string {
	//nolint:gosec // we fine, gosec
	return "s" + strconv.Itoa(int(bitDepth)) + "le"
}

// bitDepthToCodec returns the matching PCM codec name.
func bitDepthToCodec(bitDepth types.BitDepth) string {
	return "pcm_" + bitDepthToSpec(bitDepth)
}
