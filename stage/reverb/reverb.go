// Package reverb implements a mono Freeverb-style reverb stage for direct
// (cabinet-less) monitoring, with room size, damping and wet mix read from
// the parameter registry.
package reverb

import (
	"github.com/silijon/hexcaster/params"
)

// Freeverb tuning, in samples at 44.1 kHz. Delay lines are rescaled to the
// prepared sample rate.
var (
	combTuning    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [numAllpasses]int{556, 441, 341, 225}
)

const (
	numCombs     = 8
	numAllpasses = 4

	fixedGain       = 0.015
	scaleRoom       = 0.28
	offsetRoom      = 0.7
	scaleDamping    = 0.4
	allpassFeedback = 0.5
)

// Stage is a mono Freeverb: eight parallel feedback combs with damping into
// four serial allpasses, mixed wet/dry in place.
type Stage struct {
	registry *params.Registry

	combs     [numCombs]comb
	allpasses [numAllpasses]allpass

	// cached registry values, refreshed at block rate
	roomSize float32
	damping  float32
	wet      float32

	feedback float32
	damp     float32
}

// New returns a reverb stage reading its parameters from registry.
func New(registry *params.Registry) *Stage {
	return &Stage{registry: registry}
}

// Prepare allocates the delay lines for the given sample rate.
func (s *Stage) Prepare(sampleRate float64, maxBlockSize int) {
	scale := sampleRate / 44100
	for i := range s.combs {
		s.combs[i].init(int(float64(combTuning[i]) * scale))
	}
	for i := range s.allpasses {
		s.allpasses[i].init(int(float64(allpassTuning[i]) * scale))
		s.allpasses[i].feedback = allpassFeedback
	}
	s.refresh(true)
}

// Process mixes the reverberated signal into the buffer in place.
func (s *Stage) Process(buf []float32) {
	s.refresh(false)
	if s.wet <= 0 {
		// Fully dry: skip the delay network.
		return
	}

	dry := 1 - s.wet
	for i := range buf {
		input := buf[i] * fixedGain

		var out float32
		for c := range s.combs {
			out += s.combs[c].process(input, s.feedback, s.damp)
		}
		for a := range s.allpasses {
			out = s.allpasses[a].process(out)
		}

		buf[i] = buf[i]*dry + out*s.wet
	}
}

// Reset clears all delay lines without reallocating.
func (s *Stage) Reset() {
	for i := range s.combs {
		s.combs[i].clear()
	}
	for i := range s.allpasses {
		s.allpasses[i].clear()
	}
}

func (s *Stage) refresh(force bool) {
	roomSize := s.registry.Get(params.ReverbRoomSize)
	damping := s.registry.Get(params.ReverbDamping)
	wet := s.registry.Get(params.ReverbWetNorm)

	if !force && roomSize == s.roomSize && damping == s.damping && wet == s.wet {
		return
	}
	s.roomSize = roomSize
	s.damping = damping
	s.wet = wet
	s.feedback = roomSize*scaleRoom + offsetRoom
	s.damp = damping * scaleDamping
}

// comb is a feedback comb filter with a one-pole lowpass in the loop.
type comb struct {
	buffer []float32
	pos    int
	store  float32
}

func (c *comb) init(size int) {
	if size < 1 {
		size = 1
	}
	c.buffer = make([]float32, size)
	c.pos = 0
	c.store = 0
}

func (c *comb) process(input, feedback, damp float32) float32 {
	out := c.buffer[c.pos]
	c.store = out*(1-damp) + c.store*damp
	c.buffer[c.pos] = input + c.store*feedback
	c.pos++
	if c.pos >= len(c.buffer) {
		c.pos = 0
	}
	return out
}

func (c *comb) clear() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}
	c.store = 0
}

// allpass is a Schroeder allpass diffuser.
type allpass struct {
	buffer   []float32
	pos      int
	feedback float32
}

func (a *allpass) init(size int) {
	if size < 1 {
		size = 1
	}
	a.buffer = make([]float32, size)
	a.pos = 0
}

func (a *allpass) process(input float32) float32 {
	buffered := a.buffer[a.pos]
	out := -input + buffered
	a.buffer[a.pos] = input + buffered*a.feedback
	a.pos++
	if a.pos >= len(a.buffer) {
		a.pos = 0
	}
	return out
}

func (a *allpass) clear() {
	for i := range a.buffer {
		a.buffer[i] = 0
	}
}
