// Package wav reads and writes wav files as mono float32 blocks for the
// offline host. Multi-channel input is averaged down to mono, matching the
// engine's single-channel chain.
package wav

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedBitDepth is returned when a file is not 16 or 32 bit.
var ErrUnsupportedBitDepth = errors.New("wav: only 16 and 32 bit depth supported")

type (
	// Pump reads mono blocks from a wav file. Not reusable across runs.
	Pump struct {
		path    string
		file    *os.File
		decoder *wav.Decoder

		sampleRate  int
		numChannels int
		intBuf      *audio.IntBuffer
		scale       float32
	}

	// Sink writes mono blocks to a wav file.
	Sink struct {
		path     string
		bitDepth int
		file     *os.File
		encoder  *wav.Encoder
		intBuf   *audio.IntBuffer
		scale    float32
	}
)

// NewPump creates a pump for the given path.
func NewPump(path string) *Pump {
	return &Pump{path: path}
}

// Open validates the file and prepares block reads of up to bufferSize
// samples. It returns the file's sample rate.
func (p *Pump) Open(bufferSize int) (int, error) {
	file, err := os.Open(p.path)
	if err != nil {
		return 0, err
	}

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return 0, fmt.Errorf("wav: %v is not a valid file", p.path)
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth != 16 && bitDepth != 32 {
		file.Close()
		return 0, ErrUnsupportedBitDepth
	}

	p.file = file
	p.decoder = decoder
	p.sampleRate = int(decoder.SampleRate)
	p.numChannels = decoder.Format().NumChannels
	p.scale = 1 / float32(int(1)<<(bitDepth-1))
	p.intBuf = &audio.IntBuffer{
		Format:         decoder.Format(),
		Data:           make([]int, bufferSize*p.numChannels),
		SourceBitDepth: bitDepth,
	}
	return p.sampleRate, nil
}

// Pump fills buf with the next mono block and returns the number of frames
// read. io.EOF signals a clean end of file; a short read returns the frames
// together with io.ErrUnexpectedEOF.
func (p *Pump) Pump(buf []float32) (int, error) {
	p.intBuf.Data = p.intBuf.Data[:len(buf)*p.numChannels]
	read, err := p.decoder.PCMBuffer(p.intBuf)
	if err != nil {
		return 0, err
	}
	if read == 0 {
		return 0, io.EOF
	}

	frames := read / p.numChannels
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < p.numChannels; ch++ {
			sum += float32(p.intBuf.Data[i*p.numChannels+ch]) * p.scale
		}
		buf[i] = sum / float32(p.numChannels)
	}

	if frames < len(buf) {
		return frames, io.ErrUnexpectedEOF
	}
	return frames, nil
}

// Flush closes the file.
func (p *Pump) Flush() error {
	return p.file.Close()
}

// NewSink creates a wav sink for the given path.
func NewSink(path string, bitDepth int) (*Sink, error) {
	if bitDepth != 16 && bitDepth != 32 {
		return nil, ErrUnsupportedBitDepth
	}
	return &Sink{path: path, bitDepth: bitDepth}, nil
}

// Open creates the file and the encoder.
func (s *Sink) Open(sampleRate int) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	s.file = f
	s.encoder = wav.NewEncoder(f, sampleRate, s.bitDepth, 1, 1)
	s.scale = float32(int(1)<<(s.bitDepth-1)) - 1
	s.intBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: s.bitDepth,
	}
	return nil
}

// Sink writes one mono block.
func (s *Sink) Sink(buf []float32) error {
	if cap(s.intBuf.Data) < len(buf) {
		s.intBuf.Data = make([]int, len(buf))
	}
	s.intBuf.Data = s.intBuf.Data[:len(buf)]
	for i, v := range buf {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		s.intBuf.Data[i] = int(v * s.scale)
	}
	return s.encoder.Write(s.intBuf)
}

// Flush finalises the encoder and closes the file.
func (s *Sink) Flush() error {
	if err := s.encoder.Close(); err != nil {
		return err
	}
	return s.file.Close()
}
