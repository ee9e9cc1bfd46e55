package cpu

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/asset/compiler"
	"github.com/tangent-animation/embree/asset/compiler/input"
	"github.com/tangent-animation/embree/asset/scene"
	"github.com/tangent-animation/embree/tracer"
	"github.com/tangent-animation/embree/types"
)

// A floor under a ceiling with the camera in between, looking down at
// (1, 0, -1) from a distance of 5.
func testScene(t *testing.T, withCeiling bool) *scene.Scene {
	parsed := input.NewScene()
	parsed.Meshes = append(parsed.Meshes, input.NewQuadMesh("floor", types.XYZ(0, 0, 0), 10, 1))
	if withCeiling {
		parsed.Meshes = append(parsed.Meshes, input.NewQuadMesh("ceiling", types.XYZ(1.37, 5, -0.83), 400, 1))
	}
	parsed.Camera = &input.Camera{
		FOV:  30,
		Eye:  types.XYZ(1, 4, 2),
		Look: types.XYZ(1, 0, -1),
		Up:   types.XYZ(0, 1, 0),
	}

	sc, err := compiler.Compile(parsed)
	require.NoError(t, err)
	return sc
}

type blockResult struct {
	rows uint32
	err  error
}

func renderBlock(tr tracer.Tracer, req tracer.BlockRequest) blockResult {
	doneChan := make(chan uint32, 1)
	errChan := make(chan error, 1)
	req.DoneChan = doneChan
	req.ErrChan = errChan
	tr.Enqueue(req)

	select {
	case rows := <-doneChan:
		return blockResult{rows: rows}
	case err := <-errChan:
		return blockResult{err: err}
	case <-time.After(10 * time.Second):
		return blockResult{err: assert.AnError}
	}
}

func TestRenderPrimaryHits(t *testing.T) {
	sc := testScene(t, false)
	tr := NewTracer("cpu-0", 1)
	require.NoError(t, tr.Init(sc))
	defer tr.Close()

	frame := tracer.NewFrame(21, 5)
	res := renderBlock(tr, tracer.BlockRequest{BlockY: 0, BlockH: 5, Frame: frame})
	require.NoError(t, res.err)
	assert.Equal(t, uint32(5), res.rows)

	center := frame.At(10, 2)
	assert.Equal(t, int32(0), center.Hit.GeomID)
	assert.InDelta(t, 5, center.T, 1e-4)
	assert.InDelta(t, 0, center.Occlusion, 0)
	assert.Greater(t, center.Hit.Ng[1], float32(0))

	stats := tr.Stats()
	assert.Equal(t, uint32(5), stats.BlockH)
	assert.Equal(t, 21*5, stats.Traversal.Rays)
	assert.Greater(t, stats.RenderTime, time.Duration(0))
}

func TestRenderOnlyTouchesBlockRows(t *testing.T) {
	sc := testScene(t, false)
	tr := NewTracer("cpu-0", 1)
	require.NoError(t, tr.Init(sc))
	defer tr.Close()

	frame := tracer.NewFrame(4, 6)
	for i := range frame.Samples {
		frame.Samples[i].T = -1
	}

	res := renderBlock(tr, tracer.BlockRequest{BlockY: 2, BlockH: 3, Frame: frame})
	require.NoError(t, res.err)

	for y := uint32(0); y < frame.H; y++ {
		inBlock := y >= 2 && y < 5
		for _, sample := range frame.Row(y) {
			if inBlock {
				assert.NotEqual(t, float32(-1), sample.T, "row %d", y)
			} else {
				assert.Equal(t, float32(-1), sample.T, "row %d", y)
			}
		}
	}
}

func TestAmbientOcclusion(t *testing.T) {
	type spec struct {
		ceiling  bool
		radius   float32
		expected float32
	}
	specs := []spec{
		// Nothing above the floor
		{false, 0, 0},
		// The ceiling blocks every hemisphere direction
		{true, 0, 1},
		// The ceiling is out of reach
		{true, 4, 0},
	}

	for index, s := range specs {
		tr := NewTracer("cpu-ao", 1)
		require.NoError(t, tr.Init(testScene(t, s.ceiling)))

		frame := tracer.NewFrame(21, 5)
		res := renderBlock(tr, tracer.BlockRequest{BlockH: 5, Frame: frame, AOSamples: 20, AORadius: s.radius})
		tr.Close()
		require.NoError(t, res.err, "[spec %d]", index)

		center := frame.At(10, 2)
		require.Equal(t, int32(0), center.Hit.GeomID, "[spec %d]", index)
		assert.InDelta(t, s.expected, center.Occlusion, 1e-6, "[spec %d]", index)
	}
}

func TestTracersShareScene(t *testing.T) {
	sc := testScene(t, true)

	reference := tracer.NewFrame(16, 8)
	single := NewTracer("cpu-single", 1)
	require.NoError(t, single.Init(sc))
	require.NoError(t, renderBlock(single, tracer.BlockRequest{BlockH: 8, Frame: reference, AOSamples: 4}).err)
	single.Close()

	frame := tracer.NewFrame(16, 8)
	tracers := []*Tracer{NewTracer("cpu-0", 1), NewTracer("cpu-1", 1)}
	results := make(chan blockResult, len(tracers))
	for index, tr := range tracers {
		require.NoError(t, tr.Init(sc))
		defer tr.Close()

		req := tracer.BlockRequest{BlockY: uint32(index * 4), BlockH: 4, Frame: frame, AOSamples: 4}
		go func(tr *Tracer) {
			results <- renderBlock(tr, req)
		}(tr)
	}
	for range tracers {
		require.NoError(t, (<-results).err)
	}

	assert.Equal(t, reference.Samples, frame.Samples)
}

func TestTracerErrors(t *testing.T) {
	tr := NewTracer("cpu-0", 7)
	assert.Equal(t, "cpu-0", tr.Id())
	assert.Equal(t, uint32(7), tr.Speed())

	frame := tracer.NewFrame(4, 4)
	assert.ErrorIs(t, renderBlock(tr, tracer.BlockRequest{BlockH: 4, Frame: frame}).err, tracer.ErrTracerClosed)

	assert.ErrorIs(t, tr.Init(nil), tracer.ErrSceneNotLoaded)
	assert.ErrorIs(t, tr.Init(&scene.Scene{Hierarchy: &accel.Hierarchy{}}), tracer.ErrSceneNotLoaded)

	require.NoError(t, tr.Init(testScene(t, false)))
	res := renderBlock(tr, tracer.BlockRequest{BlockY: 2, BlockH: 4, Frame: frame})
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "outside of frame")

	res = renderBlock(tr, tracer.BlockRequest{BlockH: 4})
	require.Error(t, res.err)

	// Close can be called more than once and stops accepting requests.
	tr.Close()
	tr.Close()
	assert.ErrorIs(t, renderBlock(tr, tracer.BlockRequest{BlockH: 4, Frame: frame}).err, tracer.ErrTracerClosed)
}

func TestOrthonormalBasis(t *testing.T) {
	for _, n := range []types.Vec3{
		types.XYZ(0, 0, 1),
		types.XYZ(1, 0, 0),
		types.XYZ(0, -1, 0),
		types.XYZ(1, 2, 3).Normalize(),
	} {
		tangent, bitangent := orthonormalBasis(n)
		assert.InDelta(t, 0, tangent.Dot(n), 1e-6)
		assert.InDelta(t, 0, bitangent.Dot(n), 1e-6)
		assert.InDelta(t, 0, tangent.Dot(bitangent), 1e-6)
		assert.InDelta(t, 1, tangent.Len(), 1e-6)
		assert.InDelta(t, 1, bitangent.Len(), 1e-6)
	}
}
