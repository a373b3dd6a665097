package stream

import (
	"fmt"

	"cloud.google.com/go/speech/apiv1/speechpb"
)

// Sender is the send side of a streaming recognize call.
type Sender interface {
	Send(*speechpb.StreamingRecognizeRequest) error
	CloseSend() error
}

// BlockSource yields coalesced audio blocks until the capture side ends.
type BlockSource interface {
	Next() ([]byte, bool)
}

// Encoder turns drained audio blocks into streaming recognize requests. The
// first request carries the session configuration and no audio; every later
// request carries exactly one audio block.
type Encoder struct {
	sampleRate     int
	language       string
	interimResults bool
}

func NewEncoder(sampleRate int, language string, interimResults bool) *Encoder {
	return &Encoder{
		sampleRate:     sampleRate,
		language:       language,
		interimResults: interimResults,
	}
}

// ConfigRequest builds the one-time stream configuration message.
func (e *Encoder) ConfigRequest() *speechpb.StreamingRecognizeRequest {
	return &speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz: int32(e.sampleRate),
					LanguageCode:    e.language,
				},
				InterimResults: e.interimResults,
			},
		},
	}
}

// AudioRequest wraps one drained block.
func (e *Encoder) AudioRequest(block []byte) *speechpb.StreamingRecognizeRequest {
	return &speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: block,
		},
	}
}

// Pump sends the configuration request, then one audio request per block
// until the source ends, and closes the send side. Blocks are sent in the
// order they are drained.
func (e *Encoder) Pump(blocks BlockSource, s Sender) error {
	if err := s.Send(e.ConfigRequest()); err != nil {
		return fmt.Errorf("send stream config: %w", err)
	}

	for block, ok := blocks.Next(); ok; block, ok = blocks.Next() {
		if err := s.Send(e.AudioRequest(block)); err != nil {
			return fmt.Errorf("send audio block: %w", err)
		}
	}

	if err := s.CloseSend(); err != nil {
		return fmt.Errorf("close send direction: %w", err)
	}
	return nil
}
