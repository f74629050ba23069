package detect

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"shear/internal/ffmpeg"
)

// SceneFilter detects cuts with ffmpeg's built-in scene score.
type SceneFilter struct {
	opts Options
	obs  Observer
	log  *slog.Logger
}

// Detect runs the scene filter over src.
func (s *SceneFilter) Detect(ctx context.Context, src Source) (*Result, error) {
	if s.opts.DetectFlashes {
		s.log.Debug("flash detection is not available with the ffmpeg scene filter")
	}

	progress := newCheckpoint(s.obs)
	res, err := ffmpeg.RunSceneFilter(ctx, src.Path, s.opts.SceneScore, src.Info.Rate, progress.advance)
	if err != nil {
		return nil, errors.Wrap(err, "ffmpeg scene filter")
	}

	frames := res.Frames
	if frames == 0 {
		frames = src.Info.EstimatedFrames()
	}
	progress.finish(frames)
	return &Result{SceneChanges: res.Changes, FrameCount: frames}, nil
}
