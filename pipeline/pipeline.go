// Package pipeline defines the stage-chain execution model of the signal
// core: an ordered, fixed-capacity chain of in-place block processors plus
// cross-cutting controller hooks invoked at defined points around the chain.
//
// Two execution contexts touch a pipeline. The assembler (control context)
// registers stages and controllers and calls Prepare before the audio
// context starts; after that the topology is immutable. The audio context
// calls Process once per block and Reset on discontinuities. Process holds
// no locks, performs no allocation and runs a call count fixed by the
// topology: S stage calls, S*C BetweenStages calls and C PreProcess calls
// for S stages and C controllers.
package pipeline

type (
	// ProcessorStage is an in-place audio block transform.
	//
	// Prepare is called once before the audio context starts and is the
	// only method allowed to allocate. Process must handle any block length
	// up to the prepared maximum without reallocating and must complete in
	// bounded time. Reset clears internal state (filter memories, smoother
	// ramps) without reallocating.
	ProcessorStage interface {
		Prepare(sampleRate float64, maxBlockSize int)
		Process(buf []float32)
		Reset()
	}

	// Controller observes and injects around the stage chain.
	//
	// PreProcess runs once per block before any stage, against the still
	// unprocessed input; it must not modify the buffer. BetweenStages runs
	// after stage stageIndex has processed the buffer and may modify it in
	// place. Controllers hold only derived per-block state, never persistent
	// filter memory, so there is no reset hook.
	Controller interface {
		PreProcess(buf []float32)
		BetweenStages(stageIndex int, buf []float32)
	}
)

const (
	// MaxStages is the stage chain capacity.
	MaxStages = 16
	// MaxControllers is the controller list capacity.
	MaxControllers = 4
)

// Pipeline drives an ordered chain of stages with controller hooks.
//
// The pipeline does not own its stages or controllers; lifetime is managed
// by the assembler. Exceeding capacity is a programming error and panics:
// topology is a build-time decision, not a runtime one.
type Pipeline struct {
	stages      [MaxStages]ProcessorStage
	controllers [MaxControllers]Controller

	numStages      int
	numControllers int

	sampleRate   float64
	maxBlockSize int
}

// AddStage appends a stage to the chain. Must be called before Prepare.
func (p *Pipeline) AddStage(stage ProcessorStage) {
	if p.numStages >= MaxStages {
		panic("pipeline: stage limit exceeded")
	}
	if stage == nil {
		panic("pipeline: nil stage")
	}
	p.stages[p.numStages] = stage
	p.numStages++
}

// AddController appends a controller. Must be called before Prepare.
func (p *Pipeline) AddController(c Controller) {
	if p.numControllers >= MaxControllers {
		panic("pipeline: controller limit exceeded")
	}
	if c == nil {
		panic("pipeline: nil controller")
	}
	p.controllers[p.numControllers] = c
	p.numControllers++
}

// Prepare forwards to every stage in registration order. Controllers prepare
// through their own entry points, called by the assembler.
func (p *Pipeline) Prepare(sampleRate float64, maxBlockSize int) {
	p.sampleRate = sampleRate
	p.maxBlockSize = maxBlockSize

	for i := 0; i < p.numStages; i++ {
		p.stages[i].Prepare(sampleRate, maxBlockSize)
	}
}

// Process runs one block through the chain in place. Audio context only;
// must not be called before Prepare.
func (p *Pipeline) Process(buf []float32) {
	for c := 0; c < p.numControllers; c++ {
		p.controllers[c].PreProcess(buf)
	}

	for s := 0; s < p.numStages; s++ {
		p.stages[s].Process(buf)

		for c := 0; c < p.numControllers; c++ {
			p.controllers[c].BetweenStages(s, buf)
		}
	}
}

// Reset forwards to every stage. Real-time safe.
func (p *Pipeline) Reset() {
	for i := 0; i < p.numStages; i++ {
		p.stages[i].Reset()
	}
}

// NumStages returns the number of registered stages.
func (p *Pipeline) NumStages() int { return p.numStages }

// NumControllers returns the number of registered controllers.
func (p *Pipeline) NumControllers() int { return p.numControllers }
