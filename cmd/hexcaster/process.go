package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/silijon/hexcaster/engine"
	"github.com/silijon/hexcaster/log"
	"github.com/silijon/hexcaster/mp3"
	"github.com/silijon/hexcaster/params"
	"github.com/silijon/hexcaster/portaudio"
	"github.com/silijon/hexcaster/wav"
)

const blockSize = 128

// sink is the common surface of the wav, mp3 and portaudio outputs.
type sink interface {
	Open(sampleRate int) error
	Sink(buf []float32) error
	Flush() error
}

type processCommand struct {
	in       string
	out      string
	model    string
	preDb    float64
	postDb   float64
	masterDb float64
	wet      float64
	play     bool
}

func (cmd *processCommand) Name() string {
	return "process"
}

func (cmd *processCommand) Help() string {
	return "Process a wav file through the amp chain"
}

func (cmd *processCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input wav file (required)")
	fs.StringVar(&cmd.out, "out", "", "output file, .wav or .mp3 (required unless -play)")
	fs.StringVar(&cmd.model, "model", "", "amp model (.nam) to load")
	fs.Float64Var(&cmd.preDb, "pre", 0, "bloom base pre-gain in dB")
	fs.Float64Var(&cmd.postDb, "post", 0, "bloom base post-gain in dB")
	fs.Float64Var(&cmd.masterDb, "master", 0, "master gain in dB")
	fs.Float64Var(&cmd.wet, "wet", 0, "reverb wet mix [0,1]")
	fs.BoolVar(&cmd.play, "play", false, "play through the default output device instead of writing a file")
}

func (cmd *processCommand) Run() error {
	if err := cmd.validate(); err != nil {
		return err
	}
	logger := log.GetLogger()

	options := []engine.Option{engine.WithLogger(logger.WithField("cmd", "process"))}
	if cmd.model != "" {
		options = append(options, engine.WithModelPath(cmd.model))
	}
	e, err := engine.New(options...)
	if err != nil {
		return err
	}

	pump := wav.NewPump(cmd.in)
	sampleRate, err := pump.Open(blockSize)
	if err != nil {
		return err
	}
	defer pump.Flush()

	if err := e.Prepare(float64(sampleRate), blockSize); err != nil {
		return err
	}
	e.SetParam(params.BloomBasePreDb, float32(cmd.preDb))
	e.SetParam(params.BloomBasePostDb, float32(cmd.postDb))
	e.SetParam(params.MasterGainDb, float32(cmd.masterDb))
	e.SetParam(params.ReverbWetNorm, float32(cmd.wet))

	out, err := cmd.newSink()
	if err != nil {
		return err
	}
	if err := out.Open(sampleRate); err != nil {
		return err
	}

	buf := make([]float32, blockSize)
	for {
		n, err := pump.Pump(buf)
		if err == io.EOF {
			break
		}
		if err != nil && err != io.ErrUnexpectedEOF {
			return err
		}
		e.Process(buf[:n])
		if sinkErr := out.Sink(buf[:n]); sinkErr != nil {
			return sinkErr
		}
		if err == io.ErrUnexpectedEOF {
			break
		}
	}

	return out.Flush()
}

func (cmd *processCommand) newSink() (sink, error) {
	if cmd.play {
		return portaudio.NewSink(blockSize), nil
	}
	switch {
	case strings.HasSuffix(cmd.out, ".mp3"):
		return mp3.NewSink(cmd.out, 192, 2), nil
	case strings.HasSuffix(cmd.out, ".wav"):
		return wav.NewSink(cmd.out, 16)
	default:
		return nil, fmt.Errorf("unsupported output format: %v", cmd.out)
	}
}

func (cmd *processCommand) validate() error {
	var message string
	if cmd.in == "" {
		message += "Missing -in required flag\n"
	}
	if cmd.out == "" && !cmd.play {
		message += "Missing -out required flag\n"
	}
	if message != "" {
		return fmt.Errorf("%s", message)
	}
	return nil
}
