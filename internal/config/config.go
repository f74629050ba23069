// Package config holds runtime configuration: defaults, an optional TOML
// file, CLI flag parsing, and validation. Precedence is flags over file
// over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"shear/internal/detect"
	"shear/internal/scene"
	"shear/internal/sceneio"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is built by DefaultConfig, then
// LoadFile, then ParseFlags. Fields tagged toml:"-" are command-line only.
type Config struct {
	// Paths.
	Input     string `toml:"-"` // Video file or directory of videos.
	Output    string `toml:"-"` // Scene file, or directory when Input is a directory.
	SplitOnly string `toml:"-"` // Existing scene file to re-split without detection.

	// Stream parameters. Zero means probe or count them.
	FPSNum      int `toml:"-"`
	FPSDen      int `toml:"-"`
	TotalFrames int `toml:"-"`

	// Scene length limits. The effective limit is the smaller of the two.
	MaxSceneSecs   float64 `toml:"max_scene_secs"`   // Default: 10.
	MaxSceneFrames int     `toml:"max_scene_frames"` // Default: 300.

	// Detection.
	Method        detect.Method `toml:"method"`         // Default: "native".
	Speed         detect.Speed  `toml:"speed"`          // Default: "standard".
	DetectFlashes bool          `toml:"detect_flashes"` // Default: true. Cleared by --no-flashes.
	Lookahead     int           `toml:"lookahead"`      // Default: 5 frames.
	Threshold     float64       `toml:"threshold"`      // Default: 0.12.
	SceneScore    float64       `toml:"scene_score"`    // Default: 0.4 (ffmpeg method only).
	Workers       int           `toml:"workers"`        // Default: number of CPUs.

	// Output.
	Compression  sceneio.Compression `toml:"compression"`   // Default: "auto" (by extension).
	SkipExisting bool                `toml:"skip_existing"` // Default: true. Cleared by --force.

	// Detection cache. Empty disables it.
	CachePath string `toml:"cache"`

	// Watch mode (directory input only).
	Watch  bool          `toml:"-"`
	Settle time.Duration `toml:"settle"` // Default: 5s of no writes before a new file is processed.

	// Display and logging.
	Progress  bool      `toml:"progress"`
	Verbose   bool      `toml:"verbose"`
	ColorMode ColorMode `toml:"color"`    // Default: "auto".
	LogFile   string    `toml:"log_file"` // Optional log file path (appended).
	LogJSON   bool      `toml:"log_json"` // Write the log file as JSON lines.
	CheckOnly bool      `toml:"-"`        // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// LoadFile and ParseFlags apply overrides.
func DefaultConfig() Config {
	d := detect.DefaultOptions()
	return Config{
		MaxSceneSecs:   10,
		MaxSceneFrames: 300,
		Method:         d.Method,
		Speed:          d.Speed,
		DetectFlashes:  d.DetectFlashes,
		Lookahead:      d.Lookahead,
		Threshold:      d.Threshold,
		SceneScore:     d.SceneScore,
		Workers:        runtime.NumCPU(),
		Compression:    sceneio.CompressAuto,
		SkipExisting:   true,
		Settle:         5 * time.Second,
		ColorMode:      ColorAuto,
	}
}

// DetectOptions returns the detector configuration.
func (c *Config) DetectOptions() detect.Options {
	return detect.Options{
		Method:        c.Method,
		Speed:         c.Speed,
		DetectFlashes: c.DetectFlashes,
		Lookahead:     c.Lookahead,
		Threshold:     c.Threshold,
		SceneScore:    c.SceneScore,
		Workers:       c.Workers,
	}
}

// Rate returns the frame rate given on the command line, or the zero Rate
// when it should be probed.
func (c *Config) Rate() scene.Rate {
	return scene.Rate{Num: c.FPSNum, Den: c.FPSDen}
}

// Validate checks enum fields, numeric ranges, and required paths.
func (c *Config) Validate() error {
	if c.MaxSceneFrames <= 0 {
		return fmt.Errorf("--max-scene-frames: %w", scene.ErrInvalidMaxFrames)
	}
	if c.MaxSceneSecs < 0 {
		return errors.New("--max-scene-secs must not be negative")
	}
	if c.FPSNum < 0 || c.FPSDen < 0 || (c.FPSNum == 0) != (c.FPSDen == 0) {
		return errors.New("--fps-num and --fps-den must both be positive, or both omitted")
	}
	if c.TotalFrames < 0 {
		return errors.New("--total-frames must not be negative")
	}
	if err := c.DetectOptions().Validate(); err != nil {
		return err
	}

	switch c.Compression {
	case sceneio.CompressAuto, sceneio.CompressNone, sceneio.CompressZstd, sceneio.CompressGzip:
		// valid
	default:
		return errors.New("invalid compression (use 'auto', 'none', 'zstd' or 'gzip')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.CheckOnly {
		return nil
	}
	if c.Output == "" {
		return errors.New("need --output")
	}
	if c.SplitOnly != "" {
		if c.Watch {
			return errors.New("--split-only cannot be combined with --watch")
		}
		if c.Input == "" && c.TotalFrames == 0 {
			return errors.New("--split-only needs --total-frames or an --input video to probe")
		}
		return nil
	}
	if c.Input == "" {
		return errors.New("need --input")
	}
	if c.Watch {
		if c.Settle <= 0 {
			return errors.New("--settle must be positive")
		}
		if fi, err := os.Stat(c.Input); err != nil || !fi.IsDir() {
			return errors.New("--watch needs a directory --input")
		}
	}
	return nil
}
