// Package eq implements the post-distortion parametric equalizer stage:
// three peaking biquad bands whose frequency, gain and Q come from the
// parameter registry.
package eq

import (
	"github.com/silijon/hexcaster/params"
)

const numBands = 3

type bandIDs struct {
	freq params.ID
	gain params.ID
	q    params.ID
}

var bandTable = [numBands]bandIDs{
	{params.EqBand1Freq, params.EqBand1GainDb, params.EqBand1Q},
	{params.EqBand2Freq, params.EqBand2GainDb, params.EqBand2Q},
	{params.EqBand3Freq, params.EqBand3GainDb, params.EqBand3Q},
}

type band struct {
	filter biquad

	// last-seen registry values; coefficients recompute only on change
	freq float32
	gain float32
	q    float32
}

// Stage is a 3-band peaking EQ driven by the registry.
//
// Registry values are read once per block; coefficients are recomputed only
// for bands whose parameters changed since the previous block, so a steady
// block costs three float compares per band and no trigonometry.
type Stage struct {
	registry   *params.Registry
	bands      [numBands]band
	sampleRate float64
}

// New returns an EQ stage reading its band parameters from registry.
func New(registry *params.Registry) *Stage {
	return &Stage{registry: registry}
}

// Prepare stores the sample rate and computes initial coefficients.
func (s *Stage) Prepare(sampleRate float64, maxBlockSize int) {
	s.sampleRate = sampleRate
	for i := range s.bands {
		s.refreshBand(i, true)
	}
}

// Process filters the buffer through all bands in place.
func (s *Stage) Process(buf []float32) {
	for i := range s.bands {
		s.refreshBand(i, false)
	}
	for i := range buf {
		x := buf[i]
		for b := range s.bands {
			x = s.bands[b].filter.process(x)
		}
		buf[i] = x
	}
}

// Reset clears the filter delay lines.
func (s *Stage) Reset() {
	for i := range s.bands {
		s.bands[i].filter.reset()
	}
}

func (s *Stage) refreshBand(i int, force bool) {
	ids := bandTable[i]
	freq := s.registry.Get(ids.freq)
	gain := s.registry.Get(ids.gain)
	q := s.registry.Get(ids.q)

	b := &s.bands[i]
	if !force && freq == b.freq && gain == b.gain && q == b.q {
		return
	}
	b.freq, b.gain, b.q = freq, gain, q
	b.filter.setPeaking(s.sampleRate, float64(freq), float64(q), float64(gain))
}
