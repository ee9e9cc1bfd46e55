package cmd

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"time"

	"github.com/tangent-animation/embree/asset/scene/reader"
	"github.com/tangent-animation/embree/config"
	"github.com/tangent-animation/embree/log"
	"github.com/tangent-animation/embree/renderer"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())
	setupLogging(ctx)

	opts, err := cfg.RenderOptions()
	if err != nil {
		return err
	}
	scheduler, err := cfg.BlockScheduler()
	if err != nil {
		return err
	}

	// Load scene
	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc, err := reader.ReadSceneContext(runCtx, ctx.Args().First())
	if err != nil {
		return err
	}

	// Create renderer
	r, err := renderer.NewDefault(sc, scheduler, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	err = r.Render(runCtx)
	if err != nil {
		return err
	}

	// Display stats
	stats := r.Stats()
	logger.Noticef("frame statistics\n%s", stats.Table())
	logger.Infof("traversal statistics\n%s", stats.Traversal.Table())

	return writeFrame(r, cfg.Render.Out)
}

// Export the rendered frame as a PNG image.
func writeFrame(r renderer.Renderer, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	err = png.Encode(f, r.Frame())
	if err != nil {
		return fmt.Errorf("error encoding png file: %w", err)
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1000000)
	return nil
}

// Load the config file passed with --config, if any, and apply the render
// flags that were explicitly set on top of it.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}

	rc := &cfg.Render
	if ctx.IsSet("width") {
		rc.Width = uint32(ctx.Int("width"))
	}
	if ctx.IsSet("height") {
		rc.Height = uint32(ctx.Int("height"))
	}
	if ctx.IsSet("mode") {
		rc.Mode = ctx.String("mode")
	}
	if ctx.IsSet("time") {
		rc.Time = float32(ctx.Float64("time"))
	}
	if ctx.IsSet("ao-samples") {
		rc.AOSamples = uint32(ctx.Int("ao-samples"))
	}
	if ctx.IsSet("ao-radius") {
		rc.AORadius = float32(ctx.Float64("ao-radius"))
	}
	if ctx.IsSet("tracers") {
		rc.Tracers = uint32(ctx.Int("tracers"))
	}
	if ctx.IsSet("scheduler") {
		rc.Scheduler = ctx.String("scheduler")
	}
	if ctx.IsSet("out") {
		rc.Out = ctx.String("out")
	}

	return cfg, cfg.Validate()
}
