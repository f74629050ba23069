// Package detect finds scene changes in a video file. Two methods are
// available: a native one that compares colour signatures of downscaled
// frames, and one that delegates to ffmpeg's scene filter.
package detect

import (
	"context"
	"log/slog"

	"shear/internal/ffmpeg"
)

// Result is the outcome of a detection pass.
type Result struct {
	SceneChanges []int // Frame indices where a new scene starts, ascending. May omit 0.
	FrameCount   int   // Frames observed in the stream.
}

// Source is a probed input file.
type Source struct {
	Path string
	Info *ffmpeg.VideoInfo
}

// Detector finds scene changes in a source.
type Detector interface {
	Detect(ctx context.Context, src Source) (*Result, error)
}

// New returns the detector selected by opts.Method. obs may be nil.
func New(opts Options, obs Observer, log *slog.Logger) (Detector, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.Method == MethodFFmpeg {
		return &SceneFilter{opts: opts, obs: obs, log: log}, nil
	}
	return &Native{opts: opts, obs: obs, log: log}, nil
}
