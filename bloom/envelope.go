package bloom

import "math"

// Config tunes the envelope follower's detection path.
type Config struct {
	AttackMs    float64
	ReleaseMs   float64
	HpfCutoffHz float64
	LpfCutoffHz float64
	EnableLpf   bool
}

// DefaultConfig returns the detection settings used when the assembler has
// no opinion: fast attack, musical release, pick-thump filtered out.
func DefaultConfig() Config {
	return Config{
		AttackMs:    5,
		ReleaseMs:   100,
		HpfCutoffHz: 100,
		LpfCutoffHz: 6000,
	}
}

// EnvelopeFollower derives a normalised [0,1] signal-energy estimate once
// per block.
//
// The detection path is separate from the audio path: a high-pass filter
// strips low-frequency thump from the detector input (and an optional
// low-pass tames pick-noise spikes) without touching the audio buffer.
// Process never mutates its input. Not a pipeline stage.
type EnvelopeFollower struct {
	attackCoeff  float32
	releaseCoeff float32
	envelope     float32

	hpf detectorFilter
	lpf detectorFilter
	cfg Config
}

// Prepare computes the attack/release coefficients and detector filters.
// Not real-time safe.
func (e *EnvelopeFollower) Prepare(sampleRate float64, maxBlockSize int, cfg Config) {
	e.cfg = cfg
	e.attackCoeff = timeCoeff(sampleRate, cfg.AttackMs)
	e.releaseCoeff = timeCoeff(sampleRate, cfg.ReleaseMs)
	e.hpf.setHighpass(sampleRate, cfg.HpfCutoffHz)
	if cfg.EnableLpf {
		e.lpf.setLowpass(sampleRate, cfg.LpfCutoffHz)
	}
	e.Reset()
}

// SetTimes retunes attack and release without touching filter state.
// Control values land at the next Prepare-free block; callers pass
// registry-read values once per block.
func (e *EnvelopeFollower) SetTimes(sampleRate, attackMs, releaseMs float64) {
	if attackMs != e.cfg.AttackMs {
		e.cfg.AttackMs = attackMs
		e.attackCoeff = timeCoeff(sampleRate, attackMs)
	}
	if releaseMs != e.cfg.ReleaseMs {
		e.cfg.ReleaseMs = releaseMs
		e.releaseCoeff = timeCoeff(sampleRate, releaseMs)
	}
}

// Process analyses a block and returns the envelope value in [0,1].
func (e *EnvelopeFollower) Process(buf []float32) float32 {
	env := e.envelope
	for _, x := range buf {
		d := e.hpf.process(x)
		if e.cfg.EnableLpf {
			d = e.lpf.process(d)
		}
		if d < 0 {
			d = -d
		}
		if d > env {
			env = e.attackCoeff*env + (1-e.attackCoeff)*d
		} else {
			env = e.releaseCoeff*env + (1-e.releaseCoeff)*d
		}
	}
	if env > 1 {
		env = 1
	} else if env < 0 {
		env = 0
	}
	e.envelope = env
	return env
}

// Current returns the envelope from the last processed block.
func (e *EnvelopeFollower) Current() float32 { return e.envelope }

// Reset clears the envelope and detector filter state.
func (e *EnvelopeFollower) Reset() {
	e.envelope = 0
	e.hpf.reset()
	e.lpf.reset()
}

func timeCoeff(sampleRate, ms float64) float32 {
	if sampleRate <= 0 || ms <= 0 {
		return 0
	}
	return float32(math.Exp(-1 / (ms / 1000 * sampleRate)))
}

// detectorFilter is a one-pole filter for the detection path. A biquad
// would be sharper, but the detector only needs to keep thump and fizz out
// of the peak estimate.
type detectorFilter struct {
	coeff    float32
	highpass bool
	state    float32
	active   bool
}

func (f *detectorFilter) setHighpass(sampleRate, cutoffHz float64) {
	f.coeff = cutoffCoeff(sampleRate, cutoffHz)
	f.highpass = true
	f.active = true
}

func (f *detectorFilter) setLowpass(sampleRate, cutoffHz float64) {
	f.coeff = cutoffCoeff(sampleRate, cutoffHz)
	f.highpass = false
	f.active = true
}

func (f *detectorFilter) process(x float32) float32 {
	if !f.active {
		return x
	}
	f.state = f.coeff*f.state + (1-f.coeff)*x
	if f.highpass {
		return x - f.state
	}
	return f.state
}

func (f *detectorFilter) reset() { f.state = 0 }

func cutoffCoeff(sampleRate, cutoffHz float64) float32 {
	if sampleRate <= 0 || cutoffHz <= 0 {
		return 0
	}
	return float32(math.Exp(-2 * math.Pi * cutoffHz / sampleRate))
}
