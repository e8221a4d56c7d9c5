package nam_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silijon/hexcaster/stage/nam"
)

const blockSize = 64

func onesBlock() []float32 {
	buf := make([]float32, blockSize)
	for i := range buf {
		buf[i] = 1
	}
	return buf
}

func TestStagePassThroughWithoutModel(t *testing.T) {
	s := nam.NewStage()
	s.Prepare(48000, blockSize)

	buf := []float32{0.1, -0.2, 0.3}
	expected := append([]float32(nil), buf...)
	s.Process(buf)

	assert.Equal(t, expected, buf)
	assert.False(t, s.HasModel())
	assert.Equal(t, "", s.ModelPath())
}

func TestStageSwapsModelAtBlockBoundary(t *testing.T) {
	s := nam.NewStage()
	s.Prepare(48000, blockSize)
	path := writeModelFile(t, "doubler.nam", doublerModel)

	require.NoError(t, s.LoadModel(path))

	// The load only takes effect on the next Process call.
	assert.False(t, s.HasModel())

	buf := onesBlock()
	s.Process(buf)

	assert.True(t, s.HasModel())
	assert.Equal(t, path, s.ModelPath())
	for _, v := range buf {
		assert.InDelta(t, 2, v, 1e-5)
	}
}

func TestStageFailedLoadLeavesStateUntouched(t *testing.T) {
	s := nam.NewStage()
	s.Prepare(48000, blockSize)
	good := writeModelFile(t, "doubler.nam", doublerModel)
	bad := writeModelFile(t, "bad.nam", "not a model")

	require.NoError(t, s.LoadModel(good))
	s.Process(onesBlock())
	require.True(t, s.HasModel())

	assert.Error(t, s.LoadModel(bad))

	buf := onesBlock()
	s.Process(buf)

	// Previous model still active, output unchanged.
	assert.True(t, s.HasModel())
	assert.Equal(t, good, s.ModelPath())
	assert.InDelta(t, 2, buf[blockSize-1], 1e-5)
}

func TestStageUnload(t *testing.T) {
	s := nam.NewStage()
	s.Prepare(48000, blockSize)
	path := writeModelFile(t, "doubler.nam", doublerModel)

	require.NoError(t, s.LoadModel(path))
	s.Process(onesBlock())
	require.True(t, s.HasModel())

	s.UnloadModel()
	buf := onesBlock()
	s.Process(buf)

	assert.False(t, s.HasModel())
	assert.Equal(t, "", s.ModelPath())
	for _, v := range buf {
		assert.Equal(t, float32(1), v)
	}
}

func TestStageCalibrationTrims(t *testing.T) {
	s := nam.NewStage()
	s.Prepare(48000, blockSize)
	path := writeModelFile(t, "calibrated.nam", `{
		"architecture": "Linear",
		"config": {"receptive_field": 1, "bias": false},
		"weights": [1.0],
		"metadata": {"loudness": -12.0}
	}`)

	require.NoError(t, s.LoadModel(path))
	buf := onesBlock()
	s.Process(buf)

	// -6 dB output trim: unity input comes out at ~0.501.
	assert.InDelta(t, 0.5012, buf[blockSize-1], 1e-3)
}

// TestStageConcurrentLoadDuringProcess hammers the hand-off from both sides;
// run with -race. The audio side must only ever observe pass-through or a
// fully working model.
func TestStageConcurrentLoadDuringProcess(t *testing.T) {
	s := nam.NewStage()
	s.Prepare(48000, blockSize)
	path := writeModelFile(t, "doubler.nam", doublerModel)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			assert.NoError(t, s.LoadModel(path))
			s.UnloadModel()
		}
		assert.NoError(t, s.LoadModel(path))
	}()

	for i := 0; i < 5000; i++ {
		buf := onesBlock()
		s.Process(buf)
		last := buf[blockSize-1]
		// Every block is either untouched or fully doubled.
		if last != 1 {
			assert.InDelta(t, 2, last, 1e-5)
		}
	}

	wg.Wait()
	s.Process(onesBlock())
	assert.True(t, s.HasModel())
}
