package session

import (
	"context"
	"fmt"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"

	"github.com/petems/speech-search/internal/audio"
	"github.com/petems/speech-search/internal/capture"
	"github.com/petems/speech-search/internal/config"
	"github.com/petems/speech-search/internal/dispatch"
	"github.com/petems/speech-search/internal/stream"
)

// RecognizeStarter starts one streaming recognize call. *speech.Client
// satisfies it.
type RecognizeStarter interface {
	StreamingRecognize(ctx context.Context, opts ...gax.CallOption) (speechpb.Speech_StreamingRecognizeClient, error)
}

var _ RecognizeStarter = (*speech.Client)(nil)

// Config assembles the session collaborators.
type Config struct {
	Source  audio.Source
	Speech  RecognizeStarter
	Search  dispatch.Searcher
	Speaker dispatch.Speaker
	Config  *config.Config
	Logger  zerolog.Logger
}

// Session runs one listen-and-search pipeline: a capture goroutine feeding
// the buffer, an encoder goroutine pumping drained blocks into the recognize
// stream, and the dispatcher consuming responses on the calling goroutine.
type Session struct {
	source  audio.Source
	speech  RecognizeStarter
	search  dispatch.Searcher
	speaker dispatch.Speaker
	cfg     *config.Config
	log     zerolog.Logger
}

func New(cfg Config) *Session {
	return &Session{
		source:  cfg.Source,
		speech:  cfg.Speech,
		search:  cfg.Search,
		speaker: cfg.Speaker,
		cfg:     cfg.Config,
		log:     cfg.Logger,
	}
}

// Run drives the pipeline until a spoken exit, the stream deadline, an
// injected cancellation (cancel the passed context, e.g. from a signal
// handler goroutine), or a fatal error. On every exit path the capture
// goroutine is joined and the stream is cancelled or exhausted before Run
// returns; the caller keeps ownership of the device handle.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StreamDeadline())
	defer cancel()

	stop := capture.NewStopSignal()
	buf := capture.NewBuffer()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		capture.Run(s.source, buf, stop, s.log)
	}()
	// Both shutdown paths converge here: the voice exit has already set the
	// stop signal, the interrupt path arrives via the cancelled context.
	// Cancelling unblocks a pump stuck in Send; the stop signal ends capture,
	// whose sentinel ends the drain, so Wait cannot hang.
	defer func() {
		cancel()
		stop.Set()
		wg.Wait()
	}()

	st, err := s.speech.StreamingRecognize(ctx)
	if err != nil {
		return fmt.Errorf("failed to start recognize stream: %w", err)
	}

	enc := stream.NewEncoder(s.cfg.SampleRate, s.cfg.Language, s.cfg.InterimResults)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := enc.Pump(buf.Drain(), st); err != nil {
			s.log.Debug().Err(err).Msg("audio send ended")
		}
	}()

	d := dispatch.New(dispatch.Config{
		Search:      s.search,
		Speaker:     s.speaker,
		Stop:        stop,
		ResultCount: s.cfg.Search.ResultCount,
		Logger:      s.log,
	})
	return d.Run(ctx, st)
}
