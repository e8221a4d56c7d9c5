// Package gain implements a smoothed gain stage.
package gain

import (
	"math"
	"sync/atomic"

	"github.com/silijon/hexcaster/params"
)

const (
	// MinDb is the lowest accepted gain setting.
	MinDb = -60.0
	// MaxDb is the highest accepted gain setting.
	MaxDb = 24.0
	// MinLinear floors the linear gain to keep denormals out of the
	// multiply chain.
	MinLinear = 1e-3

	smoothingMs = 10.0
)

// Stage applies a smoothed linear gain to an audio block.
//
// The target gain is an atomic scalar written by the control context at any
// time, including concurrently with Process. The audio context reads it once
// per block and ramps toward it through a params.Smoother, so a control
// write lands no later than the next block and never clicks.
type Stage struct {
	target   atomic.Uint32 // linear gain, float32 bits
	smoother params.Smoother
}

// New returns a gain stage at unity.
func New() *Stage {
	s := &Stage{}
	s.target.Store(math.Float32bits(1))
	return s
}

// Prepare configures the smoother and snaps it to the current target so the
// first block does not ramp up from zero.
func (s *Stage) Prepare(sampleRate float64, maxBlockSize int) {
	s.smoother.Prepare(sampleRate, smoothingMs)
	s.smoother.Snap(s.targetLinear())
}

// Process multiplies the buffer by the smoothed gain in place.
func (s *Stage) Process(buf []float32) {
	s.smoother.SetTarget(s.targetLinear())
	for i := range buf {
		buf[i] *= s.smoother.Next()
	}
}

// Reset snaps the smoother to the current target, discarding residual ramp
// state. Used when resuming after a discontinuity such as a model swap.
func (s *Stage) Reset() {
	s.smoother.Snap(s.targetLinear())
}

// SetGainDb sets the target gain in dB, clamped to [MinDb, MaxDb].
// Safe to call from the control context at any time.
func (s *Stage) SetGainDb(db float32) {
	if db < MinDb {
		db = MinDb
	} else if db > MaxDb {
		db = MaxDb
	}
	s.SetGainLinear(DbToLinear(db))
}

// SetGainLinear sets the target gain as a linear multiplier, floored at
// MinLinear. Safe to call from the control context at any time.
func (s *Stage) SetGainLinear(linear float32) {
	if linear < MinLinear {
		linear = MinLinear
	}
	s.target.Store(math.Float32bits(linear))
}

// GainDb returns the current target gain in dB.
func (s *Stage) GainDb() float32 {
	return LinearToDb(s.targetLinear())
}

// GainLinear returns the current target gain as a linear multiplier.
func (s *Stage) GainLinear() float32 {
	return s.targetLinear()
}

func (s *Stage) targetLinear() float32 {
	return math.Float32frombits(s.target.Load())
}

// DbToLinear converts decibels to a linear multiplier.
func DbToLinear(db float32) float32 {
	return float32(math.Pow(10, float64(db)/20))
}

// LinearToDb converts a linear multiplier to decibels. Non-positive input
// reads as MinDb.
func LinearToDb(linear float32) float32 {
	if linear <= 0 {
		return MinDb
	}
	return float32(20 * math.Log10(float64(linear)))
}
