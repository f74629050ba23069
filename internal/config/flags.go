package config

// This file implements CLI flag parsing and help text. Stream and limit
// flags keep the names chunked encoders already pass to scene detectors
// (--input, --output, --fps-num, --fps-den, --total-frames, --progress).

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"shear/internal/detect"
	"shear/internal/sceneio"
)

// ErrVersion is returned by ParseFlags after printing the version.
// flag.ErrHelp is returned after printing help.
var ErrVersion = errors.New("version requested")

// Version is shown by --version; override with -ldflags "-X shear/internal/config.Version=...".
var Version = "0.3.0-dev"

// ParseFlags parses args (without the program name) into cfg. The file named
// by --config, or the default config file when it exists, is applied first
// so that flags override it.
func ParseFlags(cfg *Config, args []string, stdout io.Writer) error {
	if path, ok := configArg(args); ok {
		if err := LoadFile(path, cfg); err != nil {
			return err
		}
	} else if err := loadDefaultFile(cfg); err != nil {
		return err
	}

	fs := flag.NewFlagSet("shear", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var n negatedFlags
	var configPath string

	definePathFlags(fs, cfg, &configPath)
	defineStreamFlags(fs, cfg)
	defineDetectionFlags(fs, cfg, &n)
	defineOutputFlags(fs, cfg, &n)
	defineDisplayFlags(fs, cfg, &n)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w (see --help)", err)
	}

	applyNegatedFlags(cfg, &n)

	if n.showHelp {
		printUsage(stdout, fs)
		return flag.ErrHelp
	}
	if n.showVersion {
		fmt.Fprintln(stdout, "shear v"+Version)
		return ErrVersion
	}
	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse.
type negatedFlags struct {
	noFlashes   bool
	force       bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// definePathFlags registers -i/--input, -o/--output, --split-only, --config.
func definePathFlags(fs *flag.FlagSet, cfg *Config, configPath *string) {
	fs.StringVar(&cfg.Input, "input", "", "Input video file or directory")
	fs.StringVar(&cfg.Input, "i", "", "Same as --input")
	fs.StringVar(&cfg.Output, "output", "", "Output scene file, or directory for directory input")
	fs.StringVar(&cfg.Output, "o", "", "Same as --output")
	fs.StringVar(&cfg.SplitOnly, "split-only", "", "Re-split an existing scene file instead of detecting")
	fs.StringVar(configPath, "config", "", "TOML config file (default $XDG_CONFIG_HOME/shear/config.toml)")
}

// defineStreamFlags registers frame rate, frame count and scene length limits.
func defineStreamFlags(fs *flag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.FPSNum, "fps-num", cfg.FPSNum, "Frame rate numerator (default: probed)")
	fs.IntVar(&cfg.FPSDen, "fps-den", cfg.FPSDen, "Frame rate denominator (default: probed)")
	fs.IntVar(&cfg.TotalFrames, "total-frames", cfg.TotalFrames, "Total frames (default: counted during detection)")
	fs.Float64Var(&cfg.MaxSceneSecs, "max-scene-secs", cfg.MaxSceneSecs, "Maximum scene length in seconds")
	fs.IntVar(&cfg.MaxSceneFrames, "max-scene-frames", cfg.MaxSceneFrames, "Maximum scene length in frames")
}

// defineDetectionFlags registers --method, --speed, --no-flashes, --lookahead, thresholds, --workers, --cache.
func defineDetectionFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.Var(&methodValue{&cfg.Method}, "method", "Detection method: native | ffmpeg")
	fs.Var(&speedValue{&cfg.Speed}, "speed", "Detection speed: standard | fast")
	fs.BoolVar(&n.noFlashes, "no-flashes", false, "Treat brief flashes as scene changes")
	fs.IntVar(&cfg.Lookahead, "lookahead", cfg.Lookahead, "Frames to look ahead for flash detection")
	fs.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "Native cut threshold (mean Lab distance)")
	fs.Float64Var(&cfg.SceneScore, "scene-score", cfg.SceneScore, "ffmpeg scene score threshold, 0..1")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Signature worker goroutines")
	fs.IntVar(&cfg.Workers, "j", cfg.Workers, "Same as --workers")
	fs.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "SQLite detection cache path (default: disabled)")
}

// defineOutputFlags registers --compress, --force, --watch, --settle.
func defineOutputFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.Var(&compressionValue{&cfg.Compression}, "compress", "Output compression: auto | none | zstd | gzip")
	fs.BoolVar(&n.force, "force", false, "Overwrite existing scene files in directory mode")
	fs.BoolVar(&n.force, "f", false, "Same as --force")
	fs.BoolVar(&cfg.Watch, "watch", false, "Keep running and process new files in the input directory")
	fs.BoolVar(&cfg.Watch, "w", false, "Same as --watch")
	fs.DurationVar(&cfg.Settle, "settle", cfg.Settle, "Quiet period before a new file in watch mode is processed")
}

// defineDisplayFlags registers --progress, verbose, color, --log, --check, --version and --help.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.Progress, "progress", cfg.Progress, "Show a progress bar during detection")
	fs.BoolVar(&cfg.Progress, "p", cfg.Progress, "Same as --progress")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Same as --verbose")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.BoolVar(&cfg.LogJSON, "log-json", cfg.LogJSON, "Write the log file as JSON lines")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Check ffmpeg and ffprobe, then exit")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noFlashes {
		cfg.DetectFlashes = false
	}
	if n.force {
		cfg.SkipExisting = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs accepts "INPUT [OUTPUT]" in place of --input/--output.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	switch {
	case len(args) == 0:
		return nil
	case len(args) > 2:
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args[2:], " "))
	case cfg.Input != "":
		return fmt.Errorf("input given both as --input and %q", args[0])
	}
	cfg.Input = args[0]
	if len(args) == 2 {
		if cfg.Output != "" {
			return fmt.Errorf("output given both as --output and %q", args[1])
		}
		cfg.Output = args[1]
	}
	return nil
}

// configArg finds the --config value before the full parse, since the file
// must be applied before flags.
func configArg(args []string) (string, bool) {
	for i, a := range args {
		if a == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value, true
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

// printUsage writes the help text with flags grouped by purpose.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `shear v%s - scene detection and splitting for chunked encoding

Usage:
  shear [options] --input VIDEO --output SCENES
  shear [options] INPUT_DIR OUTPUT_DIR
  shear --split-only SCENES --total-frames N --output SCENES

`, Version)

	groups := []struct {
		title string
		names []string
	}{
		{"Paths", []string{"input", "output", "split-only", "config"}},
		{"Stream and limits", []string{"fps-num", "fps-den", "total-frames", "max-scene-secs", "max-scene-frames"}},
		{"Detection", []string{"method", "speed", "no-flashes", "lookahead", "threshold", "scene-score", "workers", "cache"}},
		{"Output", []string{"compress", "force", "watch", "settle"}},
		{"Display", []string{"progress", "verbose", "color", "no-color", "log", "log-json", "check", "version", "help"}},
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s:\n", g.title)
		for _, name := range g.names {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			def := ""
			if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
				def = fmt.Sprintf(" (default %s)", f.DefValue)
			}
			fmt.Fprintf(w, "  --%-18s %s%s\n", name, f.Usage, def)
		}
		fmt.Fprintln(w)
	}
}

// --- flag.Value adapters for enum fields ---

type methodValue struct{ p *detect.Method }

func (v *methodValue) String() string {
	if v.p == nil {
		return ""
	}
	return string(*v.p)
}

func (v *methodValue) Set(s string) error {
	switch m := detect.Method(strings.ToLower(s)); m {
	case detect.MethodNative, detect.MethodFFmpeg:
		*v.p = m
		return nil
	}
	return fmt.Errorf("invalid method %q (use native or ffmpeg)", s)
}

type speedValue struct{ p *detect.Speed }

func (v *speedValue) String() string {
	if v.p == nil {
		return ""
	}
	return string(*v.p)
}

func (v *speedValue) Set(s string) error {
	switch sp := detect.Speed(strings.ToLower(s)); sp {
	case detect.SpeedStandard, detect.SpeedFast:
		*v.p = sp
		return nil
	}
	return fmt.Errorf("invalid speed %q (use standard or fast)", s)
}

type compressionValue struct{ p *sceneio.Compression }

func (v *compressionValue) String() string {
	if v.p == nil {
		return ""
	}
	return string(*v.p)
}

func (v *compressionValue) Set(s string) error {
	switch c := sceneio.Compression(strings.ToLower(s)); c {
	case sceneio.CompressAuto, sceneio.CompressNone, sceneio.CompressZstd, sceneio.CompressGzip:
		*v.p = c
		return nil
	}
	return fmt.Errorf("invalid compression %q (use auto, none, zstd or gzip)", s)
}
