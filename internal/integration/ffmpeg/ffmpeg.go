package ffmpeg

import "time"

const (
	name = "ffmpeg"
	// Decoding is capped in duration, so this only guards against a wedged process.
	timeout = 60 * time.Second
)
