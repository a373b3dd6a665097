package audio

// Source wraps a microphone device and produces fixed-size PCM chunks.
// ReadChunk blocks until one chunk of LINEAR16 little-endian samples is
// available. The reader owns the device handle until Close.
type Source interface {
	ReadChunk() ([]byte, error)
	Close() error
}

// Device represents an audio input device
type Device struct {
	ID      string
	Name    string
	Default bool
}
