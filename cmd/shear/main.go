// Command shear detects scene changes in a video and writes a scene list in
// which no scene is longer than a configured limit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"shear/internal/check"
	"shear/internal/config"
	"shear/internal/logging"
	"shear/internal/pipeline"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args, stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, config.ErrVersion) {
			return exitOK
		}
		fmt.Fprintf(stderr, "shear: %v\n", err)
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "shear: %v\n", err)
		return exitUsage
	}

	log, closer, err := logging.New(logging.Options{
		Console: stderr,
		Color:   logColor(cfg.ColorMode),
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
		JSON:    cfg.LogJSON,
	})
	if err != nil {
		fmt.Fprintf(stderr, "shear: %v\n", err)
		return exitFailure
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.CheckOnly {
		if err := check.Run(ctx, log); err != nil {
			return exitFailure
		}
		return exitOK
	}

	// Re-splitting a scene file needs ffprobe only when there is a video to probe.
	if cfg.SplitOnly == "" || cfg.Input != "" {
		if err := check.CheckDeps(); err != nil {
			log.Error(err.Error())
			return exitFailure
		}
	}

	log.Debug("starting", "version", config.Version, "input", cfg.Input, "output", cfg.Output,
		"method", cfg.Method, "max_scene_secs", cfg.MaxSceneSecs, "max_scene_frames", cfg.MaxSceneFrames)

	if _, err := pipeline.Run(ctx, &cfg, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("interrupted")
		} else {
			log.Error("run failed", "err", err)
		}
		return exitFailure
	}
	return exitOK
}

func logColor(m config.ColorMode) logging.Color {
	switch m {
	case config.ColorAlways:
		return logging.ColorAlways
	case config.ColorNever:
		return logging.ColorNever
	default:
		return logging.ColorAuto
	}
}
