package main

import (
	"os"
	"strings"

	"github.com/tangent-animation/embree/cmd"
	"github.com/tangent-animation/embree/log"
	"github.com/tangent-animation/embree/renderer"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "embree"
	app.Usage = "answer ray queries against motion blurred triangle scenes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "generate a procedural motion blur scene and compile it into a binary archive",
			Description: `
Generate a grid of boxes and spheres on a ground plane where every other object
moves between the two time keys, build a 4-wide motion BVH over all triangles
and write the compiled scene to a zip archive which can be supplied as an
argument to the render, query and info commands.`,
			ArgsUsage: "scene.zip",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "grid",
					Value: 4,
					Usage: "number of objects along each side of the grid",
				},
				cli.Float64Flag{
					Name:  "motion",
					Value: 1.0,
					Usage: "distance moved by animated objects between the two time keys",
				},
			},
			Action: cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print compiled scene information",
			ArgsUsage: "scene.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "render",
			Usage: "render a debug image of a compiled scene",
			Description: `
Trace one primary ray per pixel and shade the hits with a debug shader. Render
settings are read from an optional TOML file; flags override file values.`,
			ArgsUsage: "scene.zip",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "TOML render settings file",
				},
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.StringFlag{
					Name:  "mode, m",
					Value: "eyelight",
					Usage: "shading mode (one of: " + strings.Join(renderer.ModeNames(), ", ") + ")",
				},
				cli.Float64Flag{
					Name:  "time, t",
					Usage: "time sample in [0, 1]",
				},
				cli.IntFlag{
					Name:  "ao-samples",
					Value: 16,
					Usage: "ambient occlusion rays per pixel",
				},
				cli.Float64Flag{
					Name:  "ao-radius",
					Usage: "max ambient occlusion ray length (0 = unbounded)",
				},
				cli.IntFlag{
					Name:  "tracers",
					Usage: "number of cpu tracers (0 = one per cpu)",
				},
				cli.StringFlag{
					Name:  "scheduler",
					Value: "naive",
					Usage: "block scheduler (naive or perfect)",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			},
			Action: cmd.RenderFrame,
		},
		{
			Name:      "query",
			Usage:     "trace a single ray and print the hit record",
			ArgsUsage: "scene.zip",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "org",
					Value: "0,0,0",
					Usage: "ray origin as x,y,z",
				},
				cli.StringFlag{
					Name:  "dir",
					Value: "0,0,-1",
					Usage: "ray direction as x,y,z",
				},
				cli.Float64Flag{
					Name:  "tnear",
					Usage: "start of the ray segment",
				},
				cli.Float64Flag{
					Name:  "tfar",
					Usage: "end of the ray segment (default: unbounded)",
				},
				cli.Float64Flag{
					Name:  "time, t",
					Usage: "time sample in [0, 1]",
				},
			},
			Action: cmd.QueryRay,
		},
	}

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.New("embree").Error(err)
		os.Exit(1)
	}
}
