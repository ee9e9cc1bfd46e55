package cmd

import (
	"errors"
	"strings"

	"github.com/tangent-animation/embree/asset/compiler"
	"github.com/tangent-animation/embree/asset/compiler/input"
	"github.com/tangent-animation/embree/asset/scene/writer"
	"github.com/urfave/cli"
)

// Generate a procedural motion blur scene, compile it and write it to a
// scene archive.
func CompileScene(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing output scene file argument")
	}
	zipFile := ctx.Args().First()
	if !strings.HasSuffix(zipFile, ".zip") {
		return errors.New("compiled scenes must be written to a file with a .zip extension")
	}

	grid := ctx.Int("grid")
	if grid < 1 {
		return errors.New("grid size must be at least 1")
	}

	logger.Noticef("generating %dx%d grid scene (motion: %.2f)", grid, grid, ctx.Float64("motion"))
	parsed := input.NewGridScene(grid, float32(ctx.Float64("motion")))

	sc, err := compiler.Compile(parsed)
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())

	return writer.WriteScene(sc, zipFile)
}
