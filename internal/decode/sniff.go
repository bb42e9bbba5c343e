package decode

import "bytes"

// Container is the audio container recognized from leading bytes.
type Container int

const (
	ContainerUnknown Container = iota
	ContainerWAV
	ContainerFLAC
	ContainerMP3
)

func (c Container) String() string {
	switch c {
	case ContainerUnknown:
		return "unknown"
	case ContainerWAV:
		return "wav"
	case ContainerFLAC:
		return "flac"
	case ContainerMP3:
		return "mp3"
	}

	return "unknown"
}

// Sniff identifies the containers decoded natively. Everything else is ContainerUnknown.
func Sniff(data []byte) Container {
	switch {
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return ContainerWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return ContainerFLAC
	case bytes.HasPrefix(data, []byte("ID3")):
		return ContainerMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0 && (data[1]>>1)&0x03 == 0x01:
		// MPEG frame sync with layer III. ADTS (AAC) shares the sync but has layer 00.
		return ContainerMP3
	}

	return ContainerUnknown
}
