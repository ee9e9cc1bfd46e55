package tracer

import "github.com/tangent-animation/embree/accel"

// The traced result for a single pixel.
type Sample struct {
	// Closest primary hit; Hit.GeomID is accel.InvalidGeomID on a miss.
	Hit accel.Hit

	// Distance to the primary hit.
	T float32

	// Fraction of ambient occlusion rays that were blocked.
	Occlusion float32
}

// A frame sized buffer of samples. Row 0 is the top of the frame.
type Frame struct {
	W, H    uint32
	Samples []Sample
}

func NewFrame(frameW, frameH uint32) *Frame {
	return &Frame{
		W:       frameW,
		H:       frameH,
		Samples: make([]Sample, frameW*frameH),
	}
}

// Get the sample for pixel (x, y).
func (f *Frame) At(x, y uint32) *Sample {
	return &f.Samples[y*f.W+x]
}

// Get the samples of row y.
func (f *Frame) Row(y uint32) []Sample {
	return f.Samples[y*f.W : (y+1)*f.W]
}
