// Package params provides the lock-free parameter store shared between the
// control context (host, MIDI, UI) and the audio context, plus the smoothing
// primitive used to turn stepped control values into click-free trajectories.
package params

// ID identifies a single parameter. Values are stable: they are the contract
// between the control layer (hosts, MIDI mapping) and the DSP layer. Add new
// parameters here first, then wire them up in the registry table and the
// relevant stages.
//
// Convention:
//   - gain parameters in dB
//   - normalised [0,1] parameters use suffix Norm
//   - time parameters in milliseconds
type ID uint32

const (
	// Bloom (dynamic gain)
	BloomBasePreDb  ID = 0 // base pre-amp gain (dB)
	BloomBasePostDb ID = 1 // base post-amp gain (dB)
	BloomPreDepth   ID = 2 // pre-gain reduction depth (dB per envelope unit)
	BloomPostDepth  ID = 3 // post-gain compensation depth (dB per envelope unit)
	EnvAttackMs     ID = 4
	EnvReleaseMs    ID = 5

	// Post-distortion EQ
	EqBand1Freq   ID = 10
	EqBand1GainDb ID = 11
	EqBand1Q      ID = 12
	EqBand2Freq   ID = 13
	EqBand2GainDb ID = 14
	EqBand2Q      ID = 15
	EqBand3Freq   ID = 16
	EqBand3GainDb ID = 17
	EqBand3Q      ID = 18

	// Master
	MasterGainDb ID = 30

	// Reverb
	ReverbRoomSize ID = 40
	ReverbDamping  ID = 41
	ReverbWetNorm  ID = 42

	numParams = 43
)

// Info holds the static metadata of a parameter.
type Info struct {
	Default float32
	Min     float32
	Max     float32
}

// infoTable is indexed by ID. Ids left out of the table (gaps in the numeric
// space) fall back to an unconstrained zero default.
var infoTable = buildInfoTable()

func buildInfoTable() [numParams]Info {
	var t [numParams]Info
	for i := range t {
		t[i] = Info{Default: 0, Min: -1e9, Max: 1e9}
	}

	// Bloom
	t[BloomBasePreDb] = Info{0, -24, 24}
	t[BloomBasePostDb] = Info{0, -24, 24}
	t[BloomPreDepth] = Info{6, 0, 24}
	t[BloomPostDepth] = Info{3, 0, 24}
	t[EnvAttackMs] = Info{5, 0.1, 500}
	t[EnvReleaseMs] = Info{100, 1, 5000}

	// Post-EQ
	t[EqBand1Freq] = Info{100, 20, 20000}
	t[EqBand1GainDb] = Info{0, -24, 24}
	t[EqBand1Q] = Info{1, 0.1, 10}
	t[EqBand2Freq] = Info{1000, 20, 20000}
	t[EqBand2GainDb] = Info{0, -24, 24}
	t[EqBand2Q] = Info{1, 0.1, 10}
	t[EqBand3Freq] = Info{8000, 20, 20000}
	t[EqBand3GainDb] = Info{0, -24, 24}
	t[EqBand3Q] = Info{1, 0.1, 10}

	// Master
	t[MasterGainDb] = Info{0, -60, 24}

	// Reverb
	t[ReverbRoomSize] = Info{0.5, 0, 1}
	t[ReverbDamping] = Info{0.5, 0, 1}
	t[ReverbWetNorm] = Info{0, 0, 1}

	return t
}

// InfoOf returns the static metadata for id. The second value is false for
// ids outside the registered space.
func InfoOf(id ID) (Info, bool) {
	if id >= numParams {
		return Info{}, false
	}
	return infoTable[id], true
}
