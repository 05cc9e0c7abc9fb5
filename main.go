/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/anima-blend/engine"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/testbed"
)

func main() {
	configPath := flag.String("config", "config.toml", "path of the TOML configuration")
	frames := flag.Uint("frames", 0, "number of frames to render before exiting, 0 runs until interrupted")
	capture := flag.String("capture", "", "write the last frame to this .png or .webp file")
	window := flag.Bool("window", false, "present the frames in a desktop window")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal("failed to load config: %s", err)
	}
	// flags win over the file when given
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			cfg.Application.Frames = uint32(*frames)
		case "capture":
			cfg.Application.CapturePath = *capture
		case "window":
			cfg.Application.Window = *window
		}
	})

	tb := testbed.NewDemoGame()

	e, err := engine.New(tb.Game, cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		core.LogFatal(err.Error())
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		e.Stop()
	}()

	// run engine
	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		core.LogFatal(runErr.Error())
	}
}
