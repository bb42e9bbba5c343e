package ffprobe

import "time"

const (
	name = "ffprobe"
	// Probing reads from a pipe and only needs the container header.
	timeout = 30 * time.Second
)
