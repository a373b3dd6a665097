package speak

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Google synthesizes snippets with Cloud Text-to-Speech and plays the mp3
// locally. Say blocks until playback completes or the context is cancelled.
type Google struct {
	client   *texttospeech.Client
	language string
	voice    string

	initOnce sync.Once
	initErr  error
}

func NewGoogle(ctx context.Context, language, voice string) (*Google, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &Google{client: client, language: language, voice: voice}, nil
}

func (g *Google) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.language,
			Name:         g.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return fmt.Errorf("synthesize failed: %w", err)
	}

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(resp.AudioContent)))
	if err != nil {
		return fmt.Errorf("failed to decode synthesized audio: %w", err)
	}
	defer streamer.Close()

	g.initOnce.Do(func() {
		g.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if g.initErr != nil {
		return fmt.Errorf("failed to initialize playback: %w", g.initErr)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

func (g *Google) Close() error {
	return g.client.Close()
}
