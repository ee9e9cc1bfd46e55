package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tangent-animation/embree/asset/scene/reader"
)

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	sceneFile := filepath.Join(dir, "grid.zip")
	imgFile := filepath.Join(dir, "frame.png")
	configFile := filepath.Join(dir, "render.toml")
	require.NoError(t, os.WriteFile(configFile, []byte("[render]\nwidth = 24\nheight = 16\nmode = \"geomid\"\n"), 0o644))

	run := func(args ...string) error {
		return newApp().Run(append([]string{"embree"}, args...))
	}

	require.NoError(t, run("compile", "--grid", "2", "--motion", "0.5", sceneFile))
	sc, err := reader.ReadScene(sceneFile)
	require.NoError(t, err)
	assert.Len(t, sc.Hierarchy.Geometries, 5)
	assert.NotZero(t, sc.MovingTriangles())

	require.NoError(t, run("info", sceneFile))

	require.NoError(t, run("render", "--config", configFile, "--height", "12", "--tracers", "2", "--out", imgFile, sceneFile))
	f, err := os.Open(imgFile)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.Width)
	assert.Equal(t, 12, cfg.Height)

	require.NoError(t, run("query", "--org", "0,10,0", "--dir", "0,-1,0", "--time", "1", sceneFile))

	assert.Error(t, run("render", "--mode", "phong", "--out", imgFile, sceneFile))
	assert.Error(t, run("query", "--org", "1,2", sceneFile))
	assert.Error(t, run("compile", filepath.Join(dir, "grid.obj")))
	assert.Error(t, run("info"))
}
