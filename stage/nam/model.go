// Package nam implements the neural amp model stage: an in-place processor
// whose work is delegated to a model loaded from a .nam file on a background
// thread and handed to the audio context through a single-slot swap.
package nam

// Model is the opaque inference capability the stage delegates to.
//
// Process reads len(in) samples and writes the same count to out; in and out
// never alias. SetMaxBlockSize is called from the control context before the
// model reaches the audio context. The recommended trims come from the
// model's calibration metadata and are applied around inference by the
// stage.
type Model interface {
	Process(in, out []float32)
	SetMaxBlockSize(n int)
	RecommendedInputDb() float32
	RecommendedOutputDb() float32
}
