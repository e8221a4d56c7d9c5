package nam_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silijon/hexcaster/stage/nam"
)

func writeModelFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const doublerModel = `{
	"version": "0.5.2",
	"architecture": "Linear",
	"config": {"receptive_field": 1, "bias": false},
	"weights": [2.0]
}`

func TestLoadLinearModel(t *testing.T) {
	path := writeModelFile(t, "doubler.nam", doublerModel)

	m, err := nam.LoadModel(path)
	require.NoError(t, err)

	in := []float32{1, 0.5, -0.25}
	out := make([]float32, len(in))
	m.Process(in, out)

	assert.Equal(t, []float32{2, 1, -0.5}, out)
}

func TestLoadLinearModelWithBiasAndHistory(t *testing.T) {
	path := writeModelFile(t, "fir.nam", `{
		"version": "0.5.2",
		"architecture": "Linear",
		"config": {"receptive_field": 2, "bias": true},
		"weights": [1.0, 1.0, 0.5]
	}`)

	m, err := nam.LoadModel(path)
	require.NoError(t, err)

	// y[n] = x[n] + x[n-1] + 0.5, history carried across blocks.
	out := make([]float32, 2)
	m.Process([]float32{1, 2}, out)
	assert.Equal(t, []float32{1.5, 3.5}, out)

	m.Process([]float32{3, 4}, out)
	assert.Equal(t, []float32{5.5, 7.5}, out)
}

func TestLoadModelCalibration(t *testing.T) {
	path := writeModelFile(t, "loud.nam", `{
		"version": "0.5.2",
		"architecture": "Linear",
		"config": {"receptive_field": 1, "bias": false},
		"weights": [1.0],
		"metadata": {"loudness": -12.0, "input_calibration_db": -3.0}
	}`)

	m, err := nam.LoadModel(path)
	require.NoError(t, err)

	// Model measured 6 dB hotter than the -18 dBFS target.
	assert.InDelta(t, -6, m.RecommendedOutputDb(), 1e-5)
	assert.InDelta(t, -3, m.RecommendedInputDb(), 1e-5)
}

func TestLoadModelFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "definitely not a model"},
		{"unknown architecture", `{"architecture": "WaveNet", "config": {}, "weights": []}`},
		{"missing weights", `{"architecture": "Linear", "config": {"receptive_field": 4}, "weights": [1.0]}`},
		{"zero receptive field", `{"architecture": "Linear", "config": {"receptive_field": 0}, "weights": []}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeModelFile(t, "bad.nam", test.content)
			_, err := nam.LoadModel(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := nam.LoadModel(filepath.Join(t.TempDir(), "nope.nam"))
	assert.Error(t, err)
}

func TestLoadModelUnknownArchitectureSentinel(t *testing.T) {
	path := writeModelFile(t, "lstm.nam", `{"architecture": "LSTM", "config": {}, "weights": []}`)
	_, err := nam.LoadModel(path)
	assert.ErrorIs(t, err, nam.ErrUnknownArchitecture)
}
