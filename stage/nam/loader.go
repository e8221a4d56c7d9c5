package nam

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// targetLoudnessDb is the playback loudness models are normalised to. A
// model whose metadata reports a different measured loudness gets the
// difference as its recommended output trim.
const targetLoudnessDb = -18.0

// ErrUnknownArchitecture is returned for .nam files whose architecture has
// no native implementation.
var ErrUnknownArchitecture = errors.New("nam: unknown architecture")

// file is the on-disk .nam layout: a JSON document with an architecture
// tag, an architecture-specific config object, a flat weight list and
// optional calibration metadata.
type file struct {
	Version      string          `json:"version"`
	Architecture string          `json:"architecture"`
	Config       json.RawMessage `json:"config"`
	Weights      []float32       `json:"weights"`
	Metadata     *metadata       `json:"metadata"`
}

type metadata struct {
	Loudness  *float32 `json:"loudness"`
	InputTrim *float32 `json:"input_calibration_db"`
}

type linearConfig struct {
	ReceptiveField int  `json:"receptive_field"`
	Bias           bool `json:"bias"`
}

// LoadModel reads and parses a .nam file. Control context only: it
// allocates, blocks on I/O and may take arbitrary time.
//
// Only the Linear architecture runs natively; other architectures fail with
// ErrUnknownArchitecture.
func LoadModel(path string) (Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nam: read %s: %w", path, err)
	}

	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("nam: parse %s: %w", path, err)
	}

	switch f.Architecture {
	case "Linear":
		return newLinearModel(&f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchitecture, f.Architecture)
	}
}

// linearModel is a FIR amp profile: the receptive field's worth of weights
// convolved with the input, plus an optional bias.
type linearModel struct {
	taps []float32
	bias float32

	// history carries the last len(taps)-1 input samples across blocks.
	history []float32

	inputDb  float32
	outputDb float32
}

func newLinearModel(f *file) (*linearModel, error) {
	var cfg linearConfig
	if err := json.Unmarshal(f.Config, &cfg); err != nil {
		return nil, fmt.Errorf("nam: linear config: %w", err)
	}
	if cfg.ReceptiveField < 1 {
		return nil, fmt.Errorf("nam: linear config: receptive field %d", cfg.ReceptiveField)
	}

	expected := cfg.ReceptiveField
	if cfg.Bias {
		expected++
	}
	if len(f.Weights) != expected {
		return nil, fmt.Errorf("nam: linear weights: have %d, want %d", len(f.Weights), expected)
	}

	m := &linearModel{
		taps:    f.Weights[:cfg.ReceptiveField],
		history: make([]float32, cfg.ReceptiveField-1),
	}
	if cfg.Bias {
		m.bias = f.Weights[cfg.ReceptiveField]
	}

	if f.Metadata != nil {
		if f.Metadata.Loudness != nil {
			m.outputDb = targetLoudnessDb - *f.Metadata.Loudness
		}
		if f.Metadata.InputTrim != nil {
			m.inputDb = *f.Metadata.InputTrim
		}
	}
	return m, nil
}

func (m *linearModel) Process(in, out []float32) {
	h := len(m.history)
	for n := range in {
		acc := m.bias
		for k, w := range m.taps {
			idx := n - k
			if idx >= 0 {
				acc += w * in[idx]
			} else {
				acc += w * m.history[h+idx]
			}
		}
		out[n] = acc
	}

	// Slide the input tail into the history ring for the next block.
	if h > 0 {
		if len(in) >= h {
			copy(m.history, in[len(in)-h:])
		} else {
			copy(m.history, m.history[len(in):])
			copy(m.history[h-len(in):], in)
		}
	}
}

// SetMaxBlockSize is a no-op for the FIR model: its per-block work depends
// only on the tap count.
func (m *linearModel) SetMaxBlockSize(int) {}

func (m *linearModel) RecommendedInputDb() float32  { return m.inputDb }
func (m *linearModel) RecommendedOutputDb() float32 { return m.outputDb }
