package params

import "math"

// Smoother is an exponential moving average smoother for parameter values.
//
// The audio context uses it to interpolate toward a target value sample by
// sample, avoiding clicks and zipper noise on control changes. Next is
// branch-free and allocation-free. Current and target are owned exclusively
// by the audio context; cross-context hand-off happens upstream of the
// smoother (see stage/gain).
type Smoother struct {
	current float32
	target  float32
	coeff   float32
}

// Prepare configures the smoothing time constant. Not real-time safe.
// A non-positive sample rate or smoothing time disables smoothing entirely:
// Next snaps straight to the target.
func (s *Smoother) Prepare(sampleRate, smoothingMs float64) {
	if sampleRate > 0 && smoothingMs > 0 {
		tau := smoothingMs / 1000
		s.coeff = float32(math.Exp(-1 / (tau * sampleRate)))
	} else {
		s.coeff = 0
	}
}

// SetTarget updates the destination the trajectory moves toward.
// Typically called once per block; Next is then called once per sample.
func (s *Smoother) SetTarget(target float32) {
	s.target = target
}

// Next advances by one sample and returns the smoothed value.
func (s *Smoother) Next() float32 {
	s.current = s.coeff*s.current + (1-s.coeff)*s.target
	return s.current
}

// Snap forces both current and target to value immediately. Use after
// Prepare or a hard reset to avoid an audible ramp from zero.
func (s *Smoother) Snap(value float32) {
	s.current = value
	s.target = value
}

// Current returns the last smoothed value.
func (s *Smoother) Current() float32 { return s.current }

// Target returns the value the smoother converges toward.
func (s *Smoother) Target() float32 { return s.target }
