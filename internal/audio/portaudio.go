package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/petems/speech-search/internal/config"
)

type portAudioSource struct {
	stream *portaudio.Stream
	buffer []int16
}

// New opens the configured input device as a mono LINEAR16 source reading
// 100ms chunks at the given sample rate.
func New(cfg config.AudioConfig, sampleRate int) (Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	device, err := findDevice(cfg.DeviceID)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	// The recognition service only supports 1-channel (mono) audio.
	buffer := make([]int16, sampleRate/10)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: len(buffer),
	}, buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open audio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start audio stream: %w", err)
	}

	return &portAudioSource{stream: stream, buffer: buffer}, nil
}

func (p *portAudioSource) ReadChunk() ([]byte, error) {
	if err := p.stream.Read(); err != nil {
		return nil, fmt.Errorf("device read failed: %w", err)
	}
	return int16ToBytes(p.buffer), nil
}

func (p *portAudioSource) Close() error {
	p.stream.Stop()
	err := p.stream.Close()
	portaudio.Terminate()
	return err
}

func findDevice(deviceID string) (*portaudio.DeviceInfo, error) {
	if deviceID == "" {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("failed to get default input device: %w", err)
		}
		return device, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == deviceID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("device not found: %s", deviceID)
}

// ListDevices enumerates audio input devices. It owns its own PortAudio
// lifetime so it can be called before any Source exists.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	result := make([]Device, 0, len(devices))
	defaultDevice, _ := portaudio.DefaultInputDevice()

	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			result = append(result, Device{
				ID:      d.Name,
				Name:    d.Name,
				Default: d == defaultDevice,
			})
		}
	}

	return result, nil
}

// int16ToBytes converts samples to little-endian PCM bytes in a new slice.
func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
