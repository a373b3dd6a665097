package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/petems/speech-search/internal/capture"
)

// Searcher runs a web search for a spoken query. Implementations may return
// no results (browser mode), which leaves playback silent.
type Searcher interface {
	Search(ctx context.Context, query string, count int) ([]Result, error)
}

// Speaker reads a snippet aloud, blocking until playback finishes.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Receiver is the receive side of a streaming recognize call.
type Receiver interface {
	Recv() (*speechpb.StreamingRecognizeResponse, error)
}

// ServerError reports a non-OK status delivered in-band by the recognizer.
// It is fatal to the session.
type ServerError struct {
	Code    int32
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

var (
	exitRe = regexp.MustCompile(`(?i)\b(exit|quit)\b`)
	nextRe = regexp.MustCompile(`(?i)\b(next)\b`)
)

type Config struct {
	Search      Searcher
	Speaker     Speaker
	Stop        *capture.StopSignal
	State       *SessionState
	ResultCount int
	Logger      zerolog.Logger
}

// Dispatcher consumes recognition responses in arrival order and applies the
// keyword rules: exit/quit ends the session, next advances result playback,
// anything else updates the search. Exactly one rule fires per response.
type Dispatcher struct {
	search Searcher
	speak  Speaker
	stop   *capture.StopSignal
	state  *SessionState
	count  int
	log    zerolog.Logger
}

func New(cfg Config) *Dispatcher {
	state := cfg.State
	if state == nil {
		state = NewSessionState()
	}
	return &Dispatcher{
		search: cfg.Search,
		speak:  cfg.Speaker,
		stop:   cfg.Stop,
		state:  state,
		count:  cfg.ResultCount,
		log:    cfg.Logger,
	}
}

// Run consumes responses until the stream ends, a spoken exit is heard, or a
// fatal error occurs. A cancelled stream is the expected consequence of an
// interrupt and is treated as clean termination.
func (d *Dispatcher) Run(ctx context.Context, rcv Receiver) error {
	for {
		resp, err := rcv.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			switch status.Code(err) {
			case codes.Canceled, codes.DeadlineExceeded:
				d.log.Debug().Err(err).Msg("recognize stream ended")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive response: %w", err)
		}

		terminal, err := d.handle(ctx, resp)
		if err != nil {
			return err
		}
		if terminal {
			return nil
		}
	}
}

// handle applies the transition rules to one response. It reports whether the
// session reached its terminal state.
func (d *Dispatcher) handle(ctx context.Context, resp *speechpb.StreamingRecognizeResponse) (bool, error) {
	if e := resp.GetError(); e != nil && e.Code != int32(codes.OK) {
		return false, &ServerError{Code: e.Code, Message: e.Message}
	}

	if len(resp.Results) == 0 {
		return false, nil
	}

	// A spoken exit outranks everything else in the same response.
	if matchAny(resp, exitRe) {
		d.log.Info().Msg("Exiting..")
		d.stop.Set()
		return true, nil
	}

	// "Next" advances playback and suppresses the search update.
	if matchAny(resp, nextRe) {
		d.log.Info().Msg("Next result")
		if d.state.Advance() {
			d.sayCurrent(ctx)
		}
		return false, nil
	}

	alts := resp.Results[0].Alternatives
	if len(alts) == 0 {
		return false, nil
	}
	transcript := alts[0].Transcript
	if transcript == d.state.LastQuery() {
		return false, nil
	}

	d.state.SetLastQuery(transcript)
	d.log.Info().Str("query", transcript).Msg("Searching")
	results, err := d.search.Search(ctx, transcript, d.count)
	if err != nil {
		return false, fmt.Errorf("search %q: %w", transcript, err)
	}
	d.state.Replace(results)
	if transcript != "" {
		d.sayCurrent(ctx)
	}
	return false, nil
}

func (d *Dispatcher) sayCurrent(ctx context.Context) {
	res, ok := d.state.Current()
	if !ok || res.Snippet == "" {
		return
	}
	d.log.Info().Str("snippet", res.Snippet).Msg("Saying")
	if err := d.speak.Say(ctx, res.Snippet); err != nil {
		d.log.Error().Err(err).Msg("speech output failed")
	}
}

// matchAny scans every alternative transcript in the response for a
// whole-word, case-insensitive match.
func matchAny(resp *speechpb.StreamingRecognizeResponse, re *regexp.Regexp) bool {
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			if re.MatchString(alt.Transcript) {
				return true
			}
		}
	}
	return false
}
