package params

// numCCs is the size of the MIDI continuous controller space.
const numCCs = 128

// unmapped marks a CC with no parameter assigned.
const unmapped = ID(0xFFFFFFFF)

// MIDIMap translates MIDI CC numbers into parameter writes.
//
// The host calls Dispatch when a CC message arrives; the raw [0,127] value is
// scaled into the target parameter's registered range. Map and Unmap are
// control-context calls; a typical setup maps a hardware pedal to
// BloomPreDepth or MasterGainDb once at startup.
type MIDIMap struct {
	mappings [numCCs]ID
}

// NewMIDIMap returns a map with no CCs assigned.
func NewMIDIMap() *MIDIMap {
	m := &MIDIMap{}
	for i := range m.mappings {
		m.mappings[i] = unmapped
	}
	return m
}

// Map assigns a CC number to a parameter.
func (m *MIDIMap) Map(cc uint8, id ID) {
	if int(cc) >= numCCs {
		return
	}
	m.mappings[cc] = id
}

// Unmap removes the assignment for a CC number.
func (m *MIDIMap) Unmap(cc uint8) {
	if int(cc) >= numCCs {
		return
	}
	m.mappings[cc] = unmapped
}

// Dispatch writes an incoming CC message into the registry, scaling the raw
// [0,127] value across the parameter's range. It reports whether the CC was
// mapped to a known parameter.
func (m *MIDIMap) Dispatch(cc, value uint8, registry *Registry) bool {
	if int(cc) >= numCCs {
		return false
	}
	id := m.mappings[cc]
	info, ok := InfoOf(id)
	if !ok {
		return false
	}
	norm := float32(value) / 127
	registry.Set(id, info.Min+norm*(info.Max-info.Min))
	return true
}
