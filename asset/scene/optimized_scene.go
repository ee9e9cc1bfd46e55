package scene

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/tangent-animation/embree/accel"
)

var (
	ErrMissingHierarchy = errors.New("scene: missing hierarchy")
	ErrMissingCamera    = errors.New("scene: missing camera")
)

// A compiled scene: the motion BVH with its triangles and the camera used to
// generate primary rays.
type Scene struct {
	Hierarchy *accel.Hierarchy

	// The scene camera.
	Camera *Camera
}

// Check that the scene is complete and that its hierarchy can be safely
// traversed.
func (sc *Scene) Validate() error {
	if sc.Hierarchy == nil {
		return ErrMissingHierarchy
	}
	if sc.Camera == nil {
		return ErrMissingCamera
	}
	if err := sc.Hierarchy.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	return nil
}

// Count the triangles whose vertices differ between the two time keys.
func (sc *Scene) MovingTriangles() int {
	moving := 0
	for index := range sc.Hierarchy.Triangles {
		tri := &sc.Hierarchy.Triangles[index]
		if tri.V[0] != tri.V[1] {
			moving++
		}
	}
	return moving
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	h := sc.Hierarchy

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", " ", fmtSize(h.Triangles, h.Geometries)})
	table.Append([]string{"", "Meshes", fmt.Sprint(len(h.Geometries)), fmtSize(h.Geometries)})
	table.Append([]string{"", "Triangles", fmt.Sprint(len(h.Triangles)), fmtSize(h.Triangles)})
	table.Append([]string{"", "Moving", fmt.Sprint(sc.MovingTriangles()), " "})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"BVH", "---", " ", fmtSize(h.Nodes)})
	table.Append([]string{"", "Nodes", fmt.Sprint(len(h.Nodes)), fmtSize(h.Nodes)})
	table.Append([]string{"", "Depth", fmt.Sprint(h.Depth), " "})
	table.Append([]string{"", "Root", h.Root.String(), " "})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(h.Triangles, h.Geometries, h.Nodes), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
