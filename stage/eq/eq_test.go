package eq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/silijon/hexcaster/params"
)

const sampleRate = 48000.0

func TestEQUnityAtZeroGain(t *testing.T) {
	r := params.NewRegistry() // all band gains default to 0 dB
	s := New(r)
	s.Prepare(sampleRate, 256)

	buf := make([]float32, 256)
	for i := range buf {
		buf[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / sampleRate))
	}
	expected := append([]float32(nil), buf...)

	s.Process(buf)

	// A peaking filter at 0 dB gain is an identity transfer function.
	for i := range buf {
		assert.InDelta(t, expected[i], buf[i], 1e-4)
	}
}

func TestEQBoostRaisesBandLevel(t *testing.T) {
	r := params.NewRegistry()
	r.Set(params.EqBand2Freq, 1000)
	r.Set(params.EqBand2GainDb, 12)
	r.Set(params.EqBand2Q, 1)

	s := New(r)
	s.Prepare(sampleRate, 256)

	// One second of a 1 kHz sine, centered on the boosted band.
	rms := processSineRMS(s, 1000)
	assert.Greater(t, rms, 1.5*sineRMS())
}

func TestEQCutLowersBandLevel(t *testing.T) {
	r := params.NewRegistry()
	r.Set(params.EqBand2Freq, 1000)
	r.Set(params.EqBand2GainDb, -12)

	s := New(r)
	s.Prepare(sampleRate, 256)

	rms := processSineRMS(s, 1000)
	assert.Less(t, rms, 0.5*sineRMS())
}

func TestEQResetClearsState(t *testing.T) {
	r := params.NewRegistry()
	r.Set(params.EqBand1GainDb, 12)
	s := New(r)
	s.Prepare(sampleRate, 64)

	buf := make([]float32, 64)
	for i := range buf {
		buf[i] = 1
	}
	s.Process(buf)
	s.Reset()

	// After reset, silence in is silence out.
	silent := make([]float32, 64)
	s.Process(silent)
	for _, v := range silent {
		assert.Equal(t, float32(0), v)
	}
}

func sineRMS() float64 {
	return 1 / math.Sqrt2
}

func processSineRMS(s *Stage, freq float64) float64 {
	const blocks = 200
	const blockSize = 256
	buf := make([]float32, blockSize)
	var sum float64
	var count int
	n := 0
	for b := 0; b < blocks; b++ {
		for i := range buf {
			buf[i] = float32(math.Sin(2 * math.Pi * freq * float64(n) / sampleRate))
			n++
		}
		s.Process(buf)
		// skip the first blocks while the filter settles
		if b >= blocks/2 {
			for _, v := range buf {
				sum += float64(v) * float64(v)
				count++
			}
		}
	}
	return math.Sqrt(sum / float64(count))
}
