// Package engine assembles the signal core into the host-facing processor:
// parameter registry, stage chain, bloom controller and model loading glue
// behind a single mono in-place block call.
//
// The host owns thread assignment: Process belongs to the audio context and
// must never be called concurrently with itself; every other method belongs
// to the control context.
package engine

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/silijon/hexcaster/bloom"
	"github.com/silijon/hexcaster/log"
	"github.com/silijon/hexcaster/params"
	"github.com/silijon/hexcaster/pipeline"
	"github.com/silijon/hexcaster/stage/eq"
	"github.com/silijon/hexcaster/stage/gain"
	"github.com/silijon/hexcaster/stage/nam"
	"github.com/silijon/hexcaster/stage/reverb"
)

// Stage order in the chain. Bloom injects its pre target before preGainPos
// runs and its post target after postGainPos.
const (
	preGainPos  = 0
	namPos      = 1
	postGainPos = 2
)

// Engine is an assembled amp-modeling processor.
type Engine struct {
	uid      string
	registry *params.Registry
	midi     *params.MIDIMap

	preGain    *gain.Stage
	namStage   *nam.Stage
	postGain   *gain.Stage
	eq         *eq.Stage
	masterGain *gain.Stage
	reverb     *reverb.Stage

	controller *bloom.Controller
	pipeline   *pipeline.Pipeline

	logger logrus.FieldLogger

	sampleRate   float64
	maxBlockSize int
	withReverb   bool
	withEQ       bool
	modelPath    string
}

// Option configures an engine at construction time.
type Option func(*Engine) error

// WithLogger sets the logger. Without this option the env-gated default
// logger is used.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) error {
		if l == nil {
			return fmt.Errorf("engine: nil logger")
		}
		e.logger = l
		return nil
	}
}

// WithModelPath loads an amp model during Prepare, before the audio context
// starts.
func WithModelPath(path string) Option {
	return func(e *Engine) error {
		e.modelPath = path
		return nil
	}
}

// WithoutReverb drops the reverb stage from the chain.
func WithoutReverb() Option {
	return func(e *Engine) error {
		e.withReverb = false
		return nil
	}
}

// WithoutEQ drops the post-distortion EQ stage from the chain.
func WithoutEQ() Option {
	return func(e *Engine) error {
		e.withEQ = false
		return nil
	}
}

// New creates an engine and applies options. The returned engine must be
// Prepared before processing.
func New(options ...Option) (*Engine, error) {
	registry := params.NewRegistry()
	e := &Engine{
		uid:        xid.New().String(),
		registry:   registry,
		midi:       params.NewMIDIMap(),
		preGain:    gain.New(),
		namStage:   nam.NewStage(),
		postGain:   gain.New(),
		eq:         eq.New(registry),
		masterGain: gain.New(),
		reverb:     reverb.New(registry),
		withReverb: true,
		withEQ:     true,
	}
	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}
	if e.logger == nil {
		e.logger = log.GetLogger().WithField("engine", e.uid)
	}

	follower := &bloom.EnvelopeFollower{}
	e.controller = bloom.NewController(e.preGain, e.postGain, preGainPos, postGainPos, registry, follower)

	e.pipeline = &pipeline.Pipeline{}
	e.pipeline.AddStage(e.preGain)
	e.pipeline.AddStage(e.namStage)
	e.pipeline.AddStage(e.postGain)
	if e.withEQ {
		e.pipeline.AddStage(e.eq)
	}
	e.pipeline.AddStage(e.masterGain)
	if e.withReverb {
		e.pipeline.AddStage(e.reverb)
	}
	e.pipeline.AddController(e.controller)

	return e, nil
}

// Prepare readies the chain for the given sample rate and block size and
// loads the initial model, if one was configured. Control context only.
func (e *Engine) Prepare(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 || maxBlockSize <= 0 {
		return fmt.Errorf("engine: prepare with sampleRate %v, maxBlockSize %v", sampleRate, maxBlockSize)
	}
	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize

	e.pipeline.Prepare(sampleRate, maxBlockSize)
	e.controller.Prepare(sampleRate, maxBlockSize)

	e.logger.WithFields(logrus.Fields{
		"sampleRate": sampleRate,
		"blockSize":  maxBlockSize,
		"stages":     e.pipeline.NumStages(),
	}).Debug("engine prepared")

	if e.modelPath != "" {
		if err := e.namStage.LoadModel(e.modelPath); err != nil {
			return fmt.Errorf("engine: initial model: %w", err)
		}
		e.logger.WithField("model", e.modelPath).Info("model staged")
	}
	return nil
}

// Process runs one mono block through the chain in place. Audio context
// only; len(buf) must not exceed the prepared block size.
func (e *Engine) Process(buf []float32) {
	e.masterGain.SetGainDb(e.registry.Get(params.MasterGainDb))
	e.pipeline.Process(buf)
}

// Reset clears stage state and the envelope follower. Real-time safe.
func (e *Engine) Reset() {
	e.pipeline.Reset()
	e.controller.Reset()
}

// SetParam writes a parameter value. Control context; visible to the audio
// context no later than the next block.
func (e *Engine) SetParam(id params.ID, value float32) {
	e.registry.Set(id, value)
}

// Param reads a parameter's current value.
func (e *Engine) Param(id params.ID) float32 {
	return e.registry.Get(id)
}

// ResetParams restores every parameter to its default. Control context,
// between sessions.
func (e *Engine) ResetParams() {
	e.registry.ResetToDefaults()
}

// MapCC binds a MIDI CC number to a parameter.
func (e *Engine) MapCC(cc uint8, id params.ID) {
	e.midi.Map(cc, id)
}

// HandleCC dispatches an incoming MIDI CC message into the registry.
func (e *Engine) HandleCC(cc, value uint8) bool {
	return e.midi.Dispatch(cc, value, e.registry)
}

// LoadModel loads an amp model on a background goroutine and stages it for
// the audio context. The returned channel delivers the load result once.
// Loads are single-flight per engine: a second call waits behind the first.
func (e *Engine) LoadModel(path string) <-chan error {
	result := make(chan error, 1)
	go func() {
		err := e.namStage.LoadModel(path)
		if err != nil {
			e.logger.WithField("model", path).WithError(err).Error("model load failed")
		} else {
			e.logger.WithField("model", path).Info("model staged")
		}
		result <- err
	}()
	return result
}

// UnloadModel stages a pass-through swap. Control context.
func (e *Engine) UnloadModel() {
	e.namStage.UnloadModel()
	e.logger.Info("model unloaded")
}

// HasModel reports whether a model is active, as of the last block boundary.
func (e *Engine) HasModel() bool { return e.namStage.HasModel() }

// ModelPath returns the active model's path, "" when passing through.
func (e *Engine) ModelPath() string { return e.namStage.ModelPath() }

// SampleRate returns the prepared sample rate, 0 before Prepare.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// UID returns the engine's session id, used in log fields.
func (e *Engine) UID() string { return e.uid }
