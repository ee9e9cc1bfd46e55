package cmd

import (
	"github.com/tangent-animation/embree/log"
	"github.com/urfave/cli"
)

var logger = log.New("embree")

// Apply the verbosity flags. They override any level set by a config file.
func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
