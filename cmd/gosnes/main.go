// Package main implements the gosnes SNES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gosnes/internal/app"
	"gosnes/internal/version"
)

func main() {
	var (
		romFile     = flag.String("rom", "", "Path to SNES ROM file")
		configFile  = flag.String("config", "", "Path to configuration file")
		headless    = flag.Bool("headless", false, "Run without a window")
		frames      = flag.Int("frames", 0, "Frame limit for headless mode (0 = unlimited)")
		trace       = flag.Bool("trace", false, "Enable CPU instruction tracing")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.DefaultConfigPath()
	}

	application, err := app.NewApplication(configPath)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	config := application.Config()
	if *headless {
		config.Video.Backend = "headless"
		config.Audio.Enabled = false
		config.Emulation.FrameLimit = *frames
		// Headless runs need a stop condition when no frame limit is given
		if *frames == 0 {
			config.Emulation.LoopDetection = true
		}
	}
	if *trace {
		config.Debug.TraceCPU = true
	}

	if *romFile == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := application.LoadROM(*romFile); err != nil {
		log.Fatalf("failed to load ROM: %v", err)
	}

	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("cleanup: %v", err)
		}
	}()

	if err := application.Run(); err != nil {
		log.Fatalf("emulator stopped with error: %v", err)
	}
}
