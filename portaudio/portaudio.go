// Package portaudio plays mono float32 blocks through the default output
// device, for monitoring a processed signal live.
package portaudio

import (
	"github.com/gordonklaus/portaudio"
)

// Sink plays mono blocks on the default portaudio device.
type Sink struct {
	buf        []float32
	stream     *portaudio.Stream
	bufferSize int
}

// NewSink returns a sink that writes fixed-size blocks.
func NewSink(bufferSize int) *Sink {
	return &Sink{bufferSize: bufferSize}
}

// Open initialises portaudio and starts the default output stream.
func (s *Sink) Open(sampleRate int) error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	s.buf = make([]float32, s.bufferSize)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), s.bufferSize, &s.buf)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	s.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return err
	}
	return nil
}

// Sink plays one block. Short final blocks are zero-padded.
func (s *Sink) Sink(buf []float32) error {
	n := copy(s.buf, buf)
	for i := n; i < len(s.buf); i++ {
		s.buf[i] = 0
	}
	return s.stream.Write()
}

// Flush stops the stream and terminates portaudio.
func (s *Sink) Flush() error {
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
