package renderer

import (
	"image/color"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/tracer"
	"github.com/tangent-animation/embree/types"
	"golang.org/x/sync/errgroup"
)

var missColor = types.Vec3{0, 0, 0}

// Convert the traced samples to colors. Rows are shaded in parallel.
func (r *defaultRenderer) shadeFrame() {
	var maxT float32
	if r.options.Mode == Depth {
		for _, sample := range r.frame.Samples {
			if sample.Hit.GeomID != accel.InvalidGeomID && sample.T > maxT {
				maxT = sample.T
			}
		}
	}

	frameW, frameH := r.frame.W, r.frame.H
	rowsPerChunk := (frameH + uint32(runtime.GOMAXPROCS(0)) - 1) / uint32(runtime.GOMAXPROCS(0))

	var g errgroup.Group
	for y0 := uint32(0); y0 < frameH; y0 += rowsPerChunk {
		y0 := y0 // per-iteration copy (go directive < 1.22)
		y1 := min(y0+rowsPerChunk, frameH)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				for x := uint32(0); x < frameW; x++ {
					sample := r.frame.At(x, y)
					var c types.Vec3
					switch {
					case sample.Hit.GeomID == accel.InvalidGeomID:
						c = missColor
					case r.options.Mode == EyeLight:
						dir := r.scene.Camera.RayDir(int(x), int(y), int(frameW), int(frameH))
						c = eyeLight(dir, sample)
					default:
						c = shade(r.options.Mode, sample, maxT)
					}
					r.image.SetRGBA(int(x), int(y), toRGBA(c))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Shade a sample that hit something.
func shade(mode Mode, sample *tracer.Sample, maxT float32) types.Vec3 {
	hit := &sample.Hit
	switch mode {
	case Depth:
		if maxT == 0 {
			return types.Vec3{1, 1, 1}
		}
		gray := 1 - 0.9*sample.T/maxT
		return types.Vec3{gray, gray, gray}
	case Normal:
		n := hit.Ng.Normalize()
		return types.Vec3{math32.Abs(n[0]), math32.Abs(n[1]), math32.Abs(n[2])}
	case UV:
		return types.Vec3{hit.U, hit.V, 1 - hit.U - hit.V}
	case GeomID:
		return randomColor(hit.GeomID)
	case GeomPrimID:
		return randomColor(hit.GeomID ^ hit.PrimID)
	case AmbientOcclusion:
		visible := 1 - sample.Occlusion
		return types.Vec3{visible, visible, visible}
	}
	return missColor
}

func eyeLight(dir types.Vec3, sample *tracer.Sample) types.Vec3 {
	cos := math32.Abs(dir.Normalize().Dot(sample.Hit.Ng.Normalize()))
	return types.Vec3{cos, cos, cos}
}

// Map an id to a stable pseudo random color.
func randomColor(id int32) types.Vec3 {
	r := ((id + 13) * 17 * 23) & 255
	g := ((id + 15) * 11 * 13) & 255
	b := ((id + 17) * 7 * 19) & 255
	return types.Vec3{float32(r) / 255, float32(g) / 255, float32(b) / 255}
}

func toRGBA(c types.Vec3) color.RGBA {
	channel := func(v float32) uint8 {
		return uint8(types.Clamp(v, 0, 1)*255 + 0.5)
	}
	return color.RGBA{channel(c[0]), channel(c[1]), channel(c[2]), 255}
}
