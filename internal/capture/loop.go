package capture

import (
	"github.com/rs/zerolog"

	"github.com/petems/speech-search/internal/audio"
)

// Run reads chunks from the source into the buffer until the stop signal is
// set or a device read fails; a read failure stops capture without being
// escalated. Exactly one sentinel is enqueued on the way out so the drain
// observes end-of-stream. Run holds exclusive read ownership of the source
// for its lifetime and is meant to run on its own goroutine.
func Run(src audio.Source, buf *Buffer, stop *StopSignal, log zerolog.Logger) {
	defer buf.PushSentinel()

	for !stop.IsSet() {
		chunk, err := src.ReadChunk()
		if err != nil {
			log.Debug().Err(err).Msg("capture stopped on device read error")
			return
		}
		buf.Push(chunk)
	}
}
