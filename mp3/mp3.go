// Package mp3 writes mono float32 blocks to an mp3 file through lame.
package mp3

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/viert/lame"
)

// Sink encodes mono blocks to an mp3 file.
type Sink struct {
	path    string
	bitRate int
	quality int
	f       *os.File
	wr      *lame.LameWriter
}

// NewSink creates an mp3 sink. bitRate is in kbit/s, quality in lame's
// [0,9] range (lower is better).
func NewSink(path string, bitRate, quality int) *Sink {
	return &Sink{path: path, bitRate: bitRate, quality: quality}
}

// Open creates the file and configures the encoder.
func (s *Sink) Open(sampleRate int) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	s.f = f
	s.wr = lame.NewWriter(f)
	s.wr.Encoder.SetBitrate(s.bitRate)
	s.wr.Encoder.SetQuality(s.quality)
	s.wr.Encoder.SetNumChannels(1)
	s.wr.Encoder.SetInSamplerate(sampleRate)
	s.wr.Encoder.SetMode(lame.MONO)
	s.wr.Encoder.InitParams()
	return nil
}

// Sink encodes one mono block.
func (s *Sink) Sink(buf []float32) error {
	out := new(bytes.Buffer)
	for _, v := range buf {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		if err := binary.Write(out, binary.LittleEndian, int16(v*32767)); err != nil {
			return err
		}
	}
	_, err := s.wr.Write(out.Bytes())
	return err
}

// Flush finalises the encoder and closes the file.
func (s *Sink) Flush() error {
	if err := s.wr.Close(); err != nil {
		return err
	}
	return s.f.Close()
}
