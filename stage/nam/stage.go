package nam

import (
	"math"
	"sync"
	"sync/atomic"
)

// pendingModel is the unit of the single-slot hand-off between the loader
// and the audio context. A nil model inside an entry means "unload".
type pendingModel struct {
	model Model
	path  string
}

// Stage wraps a swappable Model as a pipeline stage.
//
// Concurrency contract: LoadModel and UnloadModel run on the control
// context and may block; at most one load is in flight per stage (they
// serialise on an internal mutex the audio context never touches). The
// constructed model is staged into a single atomic slot; Process consumes
// the slot at the top of the block with acquire semantics, so the audio
// context only ever observes a fully constructed model. Ownership crosses
// contexts exactly once, at that block boundary.
//
// With no model active, Process passes the buffer through unmodified.
type Stage struct {
	// audio-context state
	model   Model
	scratch []float32
	inGain  float32
	outGain float32

	// single-slot hand-off, loader -> audio
	pending atomic.Pointer[pendingModel]

	// control-context readable mirrors, written by the audio context swap
	active     atomic.Bool
	activePath atomic.Pointer[string]

	loadMu       sync.Mutex // serialises loaders
	maxBlockSize int
	sampleRate   float64
}

// NewStage returns a stage with no model: pass-through.
func NewStage() *Stage {
	s := &Stage{inGain: 1, outGain: 1}
	empty := ""
	s.activePath.Store(&empty)
	return s
}

// Prepare sizes the inference scratch buffer. Not real-time safe.
func (s *Stage) Prepare(sampleRate float64, maxBlockSize int) {
	s.sampleRate = sampleRate
	s.maxBlockSize = maxBlockSize
	s.scratch = make([]float32, maxBlockSize)
	if s.model != nil {
		s.model.SetMaxBlockSize(maxBlockSize)
	}
}

// Process runs the active model over the buffer in place.
//
// The pending slot is consumed at most once per block; the swap itself is a
// pointer move plus a calibration recompute, bounded and allocation-free.
func (s *Stage) Process(buf []float32) {
	if p := s.pending.Swap(nil); p != nil {
		s.apply(p)
	}

	if s.model == nil {
		return
	}

	if s.inGain != 1 {
		for i := range buf {
			buf[i] *= s.inGain
		}
	}

	out := s.scratch[:len(buf)]
	s.model.Process(buf, out)

	for i := range buf {
		buf[i] = out[i] * s.outGain
	}
}

// Reset is a no-op: the wrapped model may carry recurrent state with no
// exposed clear operation, so a state discontinuity on reset is accepted
// rather than hidden. Reloading the model clears state.
func (s *Stage) Reset() {}

// LoadModel constructs a model from path and stages it for the audio
// context. Control context only. On failure the active model (or
// pass-through) stays in effect and the error describes the cause.
//
// A call made while a previous load is still in flight waits for it; loads
// never race on the pending slot.
func (s *Stage) LoadModel(path string) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	model, err := LoadModel(path)
	if err != nil {
		return err
	}
	if s.maxBlockSize > 0 {
		model.SetMaxBlockSize(s.maxBlockSize)
	}

	s.pending.Store(&pendingModel{model: model, path: path})
	return nil
}

// UnloadModel stages an empty hand-off; the audio context swaps it in like
// any other model and falls back to pass-through. Control context only.
func (s *Stage) UnloadModel() {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	s.pending.Store(&pendingModel{})
}

// HasModel reports whether a model is active in the audio context. The
// answer reflects the last completed block boundary.
func (s *Stage) HasModel() bool {
	return s.active.Load()
}

// ModelPath returns the path of the active model, or "" when passing
// through. Like HasModel, it trails by up to one block.
func (s *Stage) ModelPath() string {
	return *s.activePath.Load()
}

// apply moves a consumed hand-off into the active slot and recomputes the
// calibration trims. Audio context only.
func (s *Stage) apply(p *pendingModel) {
	s.model = p.model
	s.active.Store(p.model != nil)
	s.activePath.Store(&p.path)

	if p.model == nil {
		s.inGain = 1
		s.outGain = 1
		return
	}
	s.inGain = dbToLinear(p.model.RecommendedInputDb())
	s.outGain = dbToLinear(p.model.RecommendedOutputDb())
}

func dbToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}
