package reader

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangent-animation/embree/accel"
	"github.com/tangent-animation/embree/asset/scene"
	"github.com/tangent-animation/embree/asset/scene/writer"
	"github.com/tangent-animation/embree/types"
)

func testScene() *scene.Scene {
	box := types.BBox{types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1)}
	moved := types.BBox{types.XYZ(0, -1, -1), types.XYZ(2, 1, 1)}

	tris := []accel.Triangle{
		accel.StaticTriangle(types.XYZ(-1, -1, 0), types.XYZ(1, -1, 0), types.XYZ(0, 1, 0), 0, 0),
		{
			V: [2][3]types.Vec3{
				{types.XYZ(-1, -1, 1), types.XYZ(1, -1, 1), types.XYZ(0, 1, 1)},
				{types.XYZ(0, -1, 1), types.XYZ(2, -1, 1), types.XYZ(1, 1, 1)},
			},
			GeomID: 1,
		},
	}

	h := &accel.Hierarchy{
		Root:      accel.InnerNodeRef(0),
		Nodes:     make([]accel.Node, 1),
		Triangles: tris,
		Geometries: []accel.Geometry{
			{ID: 0, Name: "static", NumPrimitives: 1},
			{ID: 1, Name: "moving", NumPrimitives: 1},
		},
		Depth: 1,
	}
	h.Nodes[0].SetChild(0, accel.LeafNodeRef(0, 1), box, box)
	h.Nodes[0].SetChild(1, accel.LeafNodeRef(1, 1), box, moved)

	cam := scene.NewCamera(60)
	cam.Position = types.XYZ(0, 0, 10)
	cam.SetupProjection(1.5)

	return &scene.Scene{Hierarchy: h, Camera: cam}
}

func TestZipRoundTrip(t *testing.T) {
	sc := testScene()
	path := filepath.Join(t.TempDir(), "scene.zip")
	require.NoError(t, writer.WriteScene(sc, path))

	loaded, err := ReadScene(path)
	require.NoError(t, err)
	assert.Equal(t, sc.Hierarchy, loaded.Hierarchy)
	assert.Equal(t, sc.Camera, loaded.Camera)
}

func TestReadRemoteScene(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writer.WriteZip(&buf, testScene()))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	loaded, err := ReadScene(server.URL + "/scenes/test.zip")
	require.NoError(t, err)
	assert.Len(t, loaded.Hierarchy.Triangles, 2)
}

func TestReadRejectsInvalidHierarchy(t *testing.T) {
	sc := testScene()
	sc.Hierarchy.Nodes[0].Children[1] = accel.LeafNodeRef(1, 5)

	// WriteZip does not validate.
	var buf bytes.Buffer
	require.NoError(t, writer.WriteZip(&buf, sc))
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := ReadScene(path)
	assert.ErrorIs(t, err, accel.ErrInvalidRef)

	// WriteScene does.
	assert.ErrorIs(t, writer.WriteScene(sc, path), accel.ErrInvalidRef)
}

func TestReadMissingEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("readme.txt")
	require.NoError(t, err)
	w.Write([]byte("not a scene"))
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "empty.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = ReadScene(path)
	assert.ErrorIs(t, err, scene.ErrMissingHierarchy)
}

func TestReadCorruptEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(writer.HierarchyFile)
	require.NoError(t, err)
	w.Write([]byte("garbage"))
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "corrupt.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = ReadScene(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), writer.HierarchyFile)
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := ReadScene("scene.obj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}
