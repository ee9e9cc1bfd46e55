package renderer

import (
	"context"
	"image"
)

type Renderer interface {
	// Render frame.
	Render(ctx context.Context) error

	// Get the last rendered frame.
	Frame() *image.RGBA

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics.
	Stats() FrameStats
}
