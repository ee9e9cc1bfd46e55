package tracer

import (
	"errors"
	"time"

	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/asset/scene"
)

var (
	ErrTracerClosed   = errors.New("tracer: tracer is not running")
	ErrTracerBusy     = errors.New("tracer: tracer is still processing a block")
	ErrSceneNotLoaded = errors.New("tracer: no scene loaded")
)

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The frame receiving the traced samples. Tracers only write to the
	// rows of their own block.
	Frame *Frame

	// Time sample in [0, 1] used for all rays of the block.
	Time float32

	// Number of occlusion rays cast from each primary hit. Zero disables
	// ambient occlusion.
	AOSamples uint32

	// Max length of occlusion rays; zero means unbounded.
	AORadius float32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration

	// Traversal counters for all rays traced for the block.
	Traversal accel.Stats
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the tracer's relative computation speed. The schedulers use it to
	// split frames before any timing feedback is available.
	Speed() uint32

	// Attach the scene to trace and start processing requests.
	Init(sc *scene.Scene) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Retrieve last block statistics.
	Stats() *Stats

	// Shutdown and cleanup tracer.
	Close()
}
