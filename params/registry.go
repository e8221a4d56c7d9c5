package params

import (
	"math"
	"sync/atomic"
)

// Registry is the central store of all parameters.
//
// Thread-safety model:
//   - the control context (host, MIDI, UI) calls Set
//   - the audio context calls Get
//   - no locks: each parameter is an independent atomic scalar, and no
//     ordering is guaranteed between distinct parameters written in the same
//     control call. A written value becomes visible no later than the next
//     block boundary that reads it.
type Registry struct {
	values [numParams]atomic.Uint32
}

// NewRegistry returns a registry with every parameter at its default value.
func NewRegistry() *Registry {
	r := &Registry{}
	r.ResetToDefaults()
	return r
}

// Set writes a parameter value, clamped to the registered range. Unknown ids
// are ignored. Control context only.
func (r *Registry) Set(id ID, value float32) {
	if id >= numParams {
		return
	}
	info := infoTable[id]
	r.values[id].Store(math.Float32bits(clamp(value, info.Min, info.Max)))
}

// Get reads a parameter value. Lock-free and allocation-free, safe to call
// from the audio context. Unknown ids read as 0.
func (r *Registry) Get(id ID) float32 {
	if id >= numParams {
		return 0
	}
	return math.Float32frombits(r.values[id].Load())
}

// ResetToDefaults restores every parameter to its default. Not real-time
// safe: call from the control context before or between audio sessions.
func (r *Registry) ResetToDefaults() {
	for i := range r.values {
		r.values[i].Store(math.Float32bits(infoTable[i].Default))
	}
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
