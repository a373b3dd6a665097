package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	rpcstatus "google.golang.org/genproto/googleapis/rpc/status"

	"github.com/petems/speech-search/internal/config"
	"github.com/petems/speech-search/internal/dispatch"
)

// Mock implementations for testing

type fakeSource struct{}

func (f *fakeSource) ReadChunk() ([]byte, error) {
	time.Sleep(time.Millisecond)
	return []byte{1, 2}, nil
}

func (f *fakeSource) Close() error { return nil }

type fakeStream struct {
	speechpb.Speech_StreamingRecognizeClient

	ctx       context.Context
	responses []*speechpb.StreamingRecognizeResponse

	mu      sync.Mutex
	sent    []*speechpb.StreamingRecognizeRequest
	closed  bool
	recvIdx int
}

func (f *fakeStream) Send(req *speechpb.StreamingRecognizeRequest) error {
	if f.ctx.Err() != nil {
		return grpcstatus.Error(codes.Canceled, "stream cancelled")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeStream) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStream) Recv() (*speechpb.StreamingRecognizeResponse, error) {
	if f.recvIdx < len(f.responses) {
		resp := f.responses[f.recvIdx]
		f.recvIdx++
		return resp, nil
	}
	// No scripted responses left: behave like an idle stream until cancelled.
	<-f.ctx.Done()
	return nil, grpcstatus.Error(codes.Canceled, "context canceled")
}

func (f *fakeStream) sentRequests() []*speechpb.StreamingRecognizeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*speechpb.StreamingRecognizeRequest(nil), f.sent...)
}

type fakeStarter struct {
	stream *fakeStream
}

func (f *fakeStarter) StreamingRecognize(ctx context.Context, opts ...gax.CallOption) (speechpb.Speech_StreamingRecognizeClient, error) {
	f.stream.ctx = ctx
	return f.stream, nil
}

type nopSearcher struct{}

func (nopSearcher) Search(ctx context.Context, query string, count int) ([]dispatch.Result, error) {
	return nil, nil
}

type nopSpeaker struct{}

func (nopSpeaker) Say(ctx context.Context, text string) error { return nil }

func exitResponse() *speechpb.StreamingRecognizeResponse {
	return &speechpb.StreamingRecognizeResponse{
		Results: []*speechpb.StreamingRecognitionResult{{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "exit"}},
		}},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		SampleRate:         16000,
		Language:           "en-US",
		InterimResults:     true,
		StreamDeadlineSecs: 30,
		Search:             config.SearchConfig{ResultCount: 10},
	}
}

func newSession(st *fakeStream) *Session {
	return New(Config{
		Source:  &fakeSource{},
		Speech:  &fakeStarter{stream: st},
		Search:  nopSearcher{},
		Speaker: nopSpeaker{},
		Config:  testConfig(),
		Logger:  zerolog.Nop(),
	})
}

func runWithTimeout(t *testing.T, s *Session, ctx context.Context) error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not shut down")
		return nil
	}
}

func TestVoiceExitEndsSessionCleanly(t *testing.T) {
	st := &fakeStream{responses: []*speechpb.StreamingRecognizeResponse{exitResponse()}}
	s := newSession(st)

	if err := runWithTimeout(t, s, context.Background()); err != nil {
		t.Fatalf("expected a clean voice exit, got %v", err)
	}

	sent := st.sentRequests()
	if len(sent) == 0 {
		t.Fatal("expected at least the config request on the stream")
	}
	if sent[0].GetStreamingConfig() == nil {
		t.Error("first request must be the streaming config")
	}
	for _, req := range sent[1:] {
		if req.GetStreamingConfig() != nil {
			t.Error("only the first request may carry the config")
		}
	}
}

func TestInterruptCancellationIsClean(t *testing.T) {
	st := &fakeStream{}
	s := newSession(st)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel() // stands in for the signal handler
	}()

	if err := runWithTimeout(t, s, ctx); err != nil {
		t.Fatalf("interrupt-driven shutdown must be clean, got %v", err)
	}
}

func TestServerErrorPropagatesAndReleasesPipeline(t *testing.T) {
	st := &fakeStream{responses: []*speechpb.StreamingRecognizeResponse{{
		Error: &rpcstatus.Status{Code: int32(codes.Internal), Message: "boom"},
	}}}
	s := newSession(st)

	err := runWithTimeout(t, s, context.Background())
	if err == nil {
		t.Fatal("expected the server error to propagate")
	}
	var serverErr *dispatch.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected *dispatch.ServerError, got %T: %v", err, err)
	}
	// runWithTimeout returning at all proves the capture and pump goroutines
	// were joined on the error path.
}
