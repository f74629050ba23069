package detect

import (
	"errors"
	"fmt"
	"runtime"
)

// Method selects how scene changes are found.
type Method string

const (
	MethodNative Method = "native" // Decode downscaled frames and compare colour signatures (default).
	MethodFFmpeg Method = "ffmpeg" // Use ffmpeg's select=gt(scene,N) filter.
)

// Speed trades accuracy for throughput in the native method.
type Speed string

const (
	SpeedStandard Speed = "standard" // 320px analysis width, 8×8 grid (default).
	SpeedFast     Speed = "fast"     // 160px analysis width, 4×4 grid.
)

// MaxLookahead caps how far ahead flash detection may look.
const MaxLookahead = 60

// Options configures a Detector. The zero value is not usable; start from
// DefaultOptions.
type Options struct {
	Method        Method
	Speed         Speed
	DetectFlashes bool    // Ignore brief changes that revert within Lookahead frames.
	Lookahead     int     // Frames to look ahead for flash detection. Default: 5.
	Threshold     float64 // Native cut threshold, mean Lab distance. Default: 0.12.
	SceneScore    float64 // ffmpeg scene score threshold, 0..1. Default: 0.4.
	Workers       int     // Signature workers. Default: number of CPUs.
}

// DefaultOptions returns the standard-speed native detector with flash
// detection and a five frame lookahead.
func DefaultOptions() Options {
	return Options{
		Method:        MethodNative,
		Speed:         SpeedStandard,
		DetectFlashes: true,
		Lookahead:     5,
		Threshold:     0.12,
		SceneScore:    0.4,
		Workers:       runtime.NumCPU(),
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	switch o.Method {
	case MethodNative, MethodFFmpeg:
	default:
		return fmt.Errorf("unknown detection method %q (want native or ffmpeg)", o.Method)
	}
	switch o.Speed {
	case SpeedStandard, SpeedFast:
	default:
		return fmt.Errorf("unknown detection speed %q (want standard or fast)", o.Speed)
	}
	if o.Lookahead < 0 || o.Lookahead > MaxLookahead {
		return fmt.Errorf("lookahead must be between 0 and %d, got %d", MaxLookahead, o.Lookahead)
	}
	if o.Threshold <= 0 || o.Threshold > 2 {
		return errors.New("threshold must be in (0, 2]")
	}
	if o.SceneScore <= 0 || o.SceneScore >= 1 {
		return errors.New("scene score must be in (0, 1)")
	}
	return nil
}

// Fingerprint identifies the options that affect detection output, for
// cache keys. Workers is excluded.
func (o Options) Fingerprint() string {
	if o.Method == MethodFFmpeg {
		return fmt.Sprintf("ffmpeg/score=%g", o.SceneScore)
	}
	lookahead := 0
	if o.DetectFlashes {
		lookahead = o.Lookahead
	}
	return fmt.Sprintf("native/%s/threshold=%g/lookahead=%d", o.Speed, o.Threshold, lookahead)
}

// analysis holds the frame geometry used by the native method.
type analysis struct {
	width int
	grid  int
}

func (o Options) analysis() analysis {
	if o.Speed == SpeedFast {
		return analysis{width: 160, grid: 4}
	}
	return analysis{width: 320, grid: 8}
}

// lookahead returns the effective flash lookahead.
func (o Options) lookahead() int {
	if !o.DetectFlashes {
		return 0
	}
	return o.Lookahead
}
