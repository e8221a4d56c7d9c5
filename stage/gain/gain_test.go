package gain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/silijon/hexcaster/stage/gain"
)

const (
	sampleRate = 48000.0
	blockSize  = 128
)

// runBlocks feeds a constant unit input through the stage for the given
// number of blocks and returns the last output sample.
func runBlocks(s *gain.Stage, blocks int) float32 {
	buf := make([]float32, blockSize)
	var last float32
	for b := 0; b < blocks; b++ {
		for i := range buf {
			buf[i] = 1
		}
		s.Process(buf)
		last = buf[blockSize-1]
	}
	return last
}

func TestGainConvergence(t *testing.T) {
	tests := []struct {
		name string
		db   float32
	}{
		{"minimum", -60},
		{"cut", -6},
		{"unity", 0},
		{"boost", 6},
		{"maximum", 24},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := gain.New()
			s.Prepare(sampleRate, blockSize)
			s.SetGainDb(test.db)

			// One second of audio, two orders of magnitude past the
			// ~5 time constants needed for the exponential tail.
			out := runBlocks(s, int(sampleRate)/blockSize)

			expected := math.Pow(10, float64(test.db)/20)
			assert.InEpsilon(t, expected, float64(out), 1e-3)
		})
	}
}

func TestGainUnityExact(t *testing.T) {
	s := gain.New()
	s.SetGainDb(0)
	// Prepare snaps to the target: unity from the first sample.
	s.Prepare(sampleRate, blockSize)

	buf := []float32{0.5, -0.25, 1, -1}
	s.Process(buf)

	assert.InDelta(t, 0.5, buf[0], 1e-5)
	assert.InDelta(t, -0.25, buf[1], 1e-5)
	assert.InDelta(t, 1, buf[2], 1e-5)
	assert.InDelta(t, -1, buf[3], 1e-5)
}

func TestGainRampIsMonotonic(t *testing.T) {
	s := gain.New()
	s.Prepare(sampleRate, blockSize)
	s.SetGainDb(6)

	buf := make([]float32, blockSize)
	for i := range buf {
		buf[i] = 1
	}
	s.Process(buf)

	for i := 1; i < blockSize; i++ {
		assert.GreaterOrEqual(t, buf[i], buf[i-1])
	}
}

func TestGainClampsDb(t *testing.T) {
	s := gain.New()

	s.SetGainDb(999)
	assert.InDelta(t, gain.MaxDb, s.GainDb(), 1e-4)

	s.SetGainDb(-999)
	assert.InDelta(t, gain.MinDb, s.GainDb(), 1e-4)
}

func TestGainLinearFloor(t *testing.T) {
	s := gain.New()

	s.SetGainLinear(0)
	assert.Equal(t, float32(gain.MinLinear), s.GainLinear())

	s.SetGainLinear(-1)
	assert.Equal(t, float32(gain.MinLinear), s.GainLinear())
}

func TestGainResetSnapsRamp(t *testing.T) {
	s := gain.New()
	s.Prepare(sampleRate, blockSize)
	s.SetGainDb(-20)
	s.Reset()

	// After Reset the very first sample is already at target.
	buf := []float32{1}
	s.Process(buf)
	assert.InEpsilon(t, math.Pow(10, -20.0/20), float64(buf[0]), 1e-3)
}

func TestChainedGainsNetUnity(t *testing.T) {
	boost := gain.New()
	cut := gain.New()
	boost.Prepare(sampleRate, blockSize)
	cut.Prepare(sampleRate, blockSize)
	boost.SetGainDb(6)
	cut.SetGainDb(-6)

	buf := make([]float32, blockSize)
	var last float32
	for b := 0; b < int(sampleRate)/blockSize; b++ {
		for i := range buf {
			buf[i] = 1
		}
		boost.Process(buf)
		cut.Process(buf)
		last = buf[blockSize-1]
	}

	assert.InEpsilon(t, 1, float64(last), 1e-3)
}
