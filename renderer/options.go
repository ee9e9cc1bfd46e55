package renderer

import (
	"fmt"
	"strings"
)

// The debug shading mode used to turn traced samples into colors.
type Mode uint8

const (
	// Shade hits by the cosine between the eye ray and the surface normal.
	EyeLight Mode = iota

	// Gray scale hit distance; near hits are bright.
	Depth

	// Absolute value of the normalized geometric normal.
	Normal

	// Barycentric coordinates (u, v, 1-u-v).
	UV

	// A pseudo random color per geometry.
	GeomID

	// A pseudo random color per geometry and primitive.
	GeomPrimID

	// Fraction of unblocked ambient occlusion rays.
	AmbientOcclusion
)

var modeNames = []string{"eyelight", "depth", "ng", "uv", "geomid", "geomid_primid", "ao"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", m)
}

// Get the list of supported mode names.
func ModeNames() []string {
	return append([]string(nil), modeNames...)
}

// Parse a shading mode name.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for index, modeName := range modeNames {
		if name == modeName {
			return Mode(index), nil
		}
	}
	return EyeLight, fmt.Errorf("%w %q (supported: %s)", ErrUnknownMode, name, strings.Join(modeNames, ", "))
}

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Shading mode.
	Mode Mode

	// Time sample in [0, 1] for all primary rays.
	Time float32

	// Ambient occlusion rays per pixel and their max length (zero means
	// unbounded). Only used by the AmbientOcclusion mode.
	AOSamples uint32
	AORadius  float32

	// Number of cpu tracers to split frames across; zero uses one tracer
	// per cpu.
	NumTracers uint32
}
