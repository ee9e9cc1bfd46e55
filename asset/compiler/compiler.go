package compiler

import (
	"errors"
	"fmt"
	"time"

	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/asset/compiler/bvh"
	"github.com/tangent-animation/embree/asset/compiler/input"
	"github.com/tangent-animation/embree/asset/scene"
	"github.com/tangent-animation/embree/log"
)

const (
	// Leafs are created once a partition holds this many primitives.
	minPrimitivesPerLeaf = 4
)

var (
	ErrNoCamera = errors.New("compiler: scene does not define a camera")
)

// A primitive tagged with the ids it will be reported with.
type meshPrimitive struct {
	*input.Primitive
	geomID uint32
	primID uint32
}

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	logger         log.Logger
}

// Compile a parsed scene into a scene that can be queried: all mesh
// primitives are partitioned into a single motion BVH and the camera is set
// up for primary ray generation. Meshes are assigned geometry ids in the
// order they appear in the scene.
func Compile(parsedScene *input.Scene) (*scene.Scene, error) {
	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		optimizedScene: &scene.Scene{
			Hierarchy: &accel.Hierarchy{},
		},
		logger: log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene")

	var err error
	err = compiler.partitionGeometry()
	if err != nil {
		return nil, err
	}

	err = compiler.setupCamera()
	if err != nil {
		return nil, err
	}

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Build the scene BVH. Primitives are copied to the hierarchy triangle list
// in leaf order so each leaf references a contiguous triangle run.
func (sc *sceneCompiler) partitionGeometry() error {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	h := sc.optimizedScene.Hierarchy
	totalPrimitives := sc.parsedScene.NumPrimitives()
	h.Geometries = make([]accel.Geometry, len(sc.parsedScene.Meshes))
	h.Triangles = make([]accel.Triangle, 0, totalPrimitives)

	volList := make([]bvh.BoundedVolume, 0, totalPrimitives)
	for mIndex, pm := range sc.parsedScene.Meshes {
		h.Geometries[mIndex] = accel.Geometry{
			ID:            uint32(mIndex),
			Name:          pm.Name,
			NumPrimitives: uint32(len(pm.Primitives)),
		}
		for pIndex, prim := range pm.Primitives {
			volList = append(volList, &meshPrimitive{
				Primitive: prim,
				geomID:    uint32(mIndex),
				primID:    uint32(pIndex),
			})
		}
	}

	sc.logger.Infof("building BVH tree (%d meshes, %d primitives)", len(sc.parsedScene.Meshes), totalPrimitives)
	tree := bvh.Build(volList, minPrimitivesPerLeaf, func(workList []bvh.BoundedVolume) accel.NodeRef {
		first := uint32(len(h.Triangles))
		for _, workItem := range workList {
			prim := workItem.(*meshPrimitive)
			h.Triangles = append(h.Triangles, accel.Triangle{
				V:      prim.Vertices,
				GeomID: prim.geomID,
				PrimID: prim.primID,
			})
		}
		return accel.LeafNodeRef(first, uint32(len(workList)))
	}, bvh.SurfaceAreaHeuristic)

	h.Root = tree.Root
	h.Nodes = tree.Nodes
	h.Depth = tree.Depth

	if err := h.Validate(); err != nil {
		return fmt.Errorf("compiler: generated invalid hierarchy: %w", err)
	}

	sc.logger.Infof(
		"partitioned geometry in %d ms (nodes: %d, depth: %d)",
		time.Since(start).Nanoseconds()/1e6, len(h.Nodes), h.Depth,
	)
	return nil
}

// Convert the parsed camera settings.
func (sc *sceneCompiler) setupCamera() error {
	pc := sc.parsedScene.Camera
	if pc == nil {
		return ErrNoCamera
	}

	cam := scene.NewCamera(pc.FOV)
	cam.Position = pc.Eye
	cam.LookAt = pc.Look
	cam.Up = pc.Up
	cam.Update()

	sc.optimizedScene.Camera = cam
	return nil
}
