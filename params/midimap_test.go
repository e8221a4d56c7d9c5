package params_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/silijon/hexcaster/params"
)

func TestMIDIMapDispatch(t *testing.T) {
	r := params.NewRegistry()
	m := params.NewMIDIMap()
	m.Map(7, params.MasterGainDb)

	// CC value 127 maps to the parameter maximum.
	assert.True(t, m.Dispatch(7, 127, r))
	assert.Equal(t, float32(24), r.Get(params.MasterGainDb))

	// CC value 0 maps to the parameter minimum.
	assert.True(t, m.Dispatch(7, 0, r))
	assert.Equal(t, float32(-60), r.Get(params.MasterGainDb))
}

func TestMIDIMapUnmapped(t *testing.T) {
	r := params.NewRegistry()
	m := params.NewMIDIMap()

	assert.False(t, m.Dispatch(7, 64, r))

	m.Map(7, params.MasterGainDb)
	m.Unmap(7)
	assert.False(t, m.Dispatch(7, 64, r))
	assert.Equal(t, float32(0), r.Get(params.MasterGainDb))
}
