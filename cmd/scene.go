package cmd

import (
	"errors"

	"github.com/tangent-animation/embree/asset/scene/reader"
	"github.com/urfave/cli"
)

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing compiled scene zip file")
	}

	sc, err := reader.ReadScene(ctx.Args().First())
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())
	logger.Noticef("camera:\n%s", sc.Camera.Frustum)

	return nil
}
