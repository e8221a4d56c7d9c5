// Package bloom implements the dynamic dual-gain coordinator: one envelope
// follower drives the pre-amp gain down and the post-amp gain up as playing
// intensity rises, keeping perceived volume steady while the amp model's
// input level breathes.
package bloom

import (
	"github.com/silijon/hexcaster/params"
	"github.com/silijon/hexcaster/stage/gain"
)

// Injection limits for the computed gain values. Tighter than the gain
// stage's own range: bloom modulates around a base level, it never drives a
// stage to its extremes.
const (
	minDb = -24.0
	maxDb = 24.0
)

// EnvelopeSource produces one normalised envelope value per block without
// mutating the buffer. *EnvelopeFollower is the production implementation.
type EnvelopeSource interface {
	Process(buf []float32) float32
}

// Controller is a pipeline controller bound to a pre and a post gain stage.
//
// Per block:
//
//	preGainDb  = clamp(BasePre  - PreDepth * envelope)
//	postGainDb = clamp(BasePost + PostDepth * envelope)
//
// Both legs share the one envelope value derived in PreProcess; deriving
// them separately would let the legs drift and pump audibly. Parameters are
// read from the registry once per block so a block sees consistent
// coefficients.
//
// The controller references the gain stages, it does not own them: the gain
// application strategy can change without touching the modulation strategy.
type Controller struct {
	pre  *gain.Stage
	post *gain.Stage

	preIndex  int
	postIndex int

	registry *params.Registry
	follower EnvelopeSource

	sampleRate float64

	// per-block cache, valid from PreProcess to the last BetweenStages
	envelope float32
	basePre  float32
	basePost float32
}

// NewController binds the controller to its gain stages and their positions
// in the stage chain. The pre target is pushed right before the stage at
// preIndex runs; the post target right after the stage at postIndex.
func NewController(pre, post *gain.Stage, preIndex, postIndex int, registry *params.Registry, follower EnvelopeSource) *Controller {
	return &Controller{
		pre:       pre,
		post:      post,
		preIndex:  preIndex,
		postIndex: postIndex,
		registry:  registry,
		follower:  follower,
	}
}

// Prepare configures the envelope follower from the registry's timing
// parameters. Called by the assembler, not by the pipeline.
func (c *Controller) Prepare(sampleRate float64, maxBlockSize int) {
	c.sampleRate = sampleRate
	if f, ok := c.follower.(*EnvelopeFollower); ok {
		cfg := DefaultConfig()
		cfg.AttackMs = float64(c.registry.Get(params.EnvAttackMs))
		cfg.ReleaseMs = float64(c.registry.Get(params.EnvReleaseMs))
		f.Prepare(sampleRate, maxBlockSize, cfg)
	}
}

// PreProcess derives the block's envelope value from the unprocessed input
// and latches this block's parameters. The buffer is not modified.
//
// When the pre stage opens the chain there is no hook before stage 0, so
// the pre target is pushed here instead of in BetweenStages.
func (c *Controller) PreProcess(buf []float32) {
	if f, ok := c.follower.(*EnvelopeFollower); ok {
		f.SetTimes(c.sampleRate,
			float64(c.registry.Get(params.EnvAttackMs)),
			float64(c.registry.Get(params.EnvReleaseMs)))
	}

	c.envelope = c.follower.Process(buf)
	c.basePre = c.registry.Get(params.BloomBasePreDb)
	c.basePost = c.registry.Get(params.BloomBasePostDb)

	if c.preIndex == 0 {
		c.pushPre()
	}
}

// BetweenStages pushes the pre target right before the pre stage position
// and the post target right after the post stage position.
func (c *Controller) BetweenStages(stageIndex int, buf []float32) {
	if stageIndex == c.preIndex-1 {
		c.pushPre()
	}
	if stageIndex == c.postIndex {
		c.pushPost()
	}
}

// Reset clears the envelope follower.
func (c *Controller) Reset() {
	if f, ok := c.follower.(*EnvelopeFollower); ok {
		f.Reset()
	}
}

func (c *Controller) pushPre() {
	depth := c.registry.Get(params.BloomPreDepth)
	c.pre.SetGainDb(clampDb(c.basePre - depth*c.envelope))
}

func (c *Controller) pushPost() {
	depth := c.registry.Get(params.BloomPostDepth)
	c.post.SetGainDb(clampDb(c.basePost + depth*c.envelope))
}

func clampDb(db float32) float32 {
	if db < minDb {
		return minDb
	}
	if db > maxDb {
		return maxDb
	}
	return db
}
