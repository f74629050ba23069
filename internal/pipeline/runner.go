// Package pipeline runs detection and splitting over one file, a directory
// of files, or a directory being watched, and reports a summary.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pkg/errors"

	"shear/internal/cache"
	"shear/internal/config"
	"shear/internal/detect"
	"shear/internal/display"
	"shear/internal/ffmpeg"
	"shear/internal/scene"
	"shear/internal/sceneio"
)

// cacheMaxAge is how long a cached detection is kept.
const cacheMaxAge = 90 * 24 * time.Hour

// Runner processes files according to a Config.
type Runner struct {
	cfg   *config.Config
	log   *slog.Logger
	cache *cache.Store // nil when caching is off

	// Replaced in tests.
	probe       func(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
	newDetector func(opts detect.Options, obs detect.Observer, log *slog.Logger) (detect.Detector, error)
	progressOut io.Writer
}

// NewRunner returns a Runner for cfg. Close releases the cache.
func NewRunner(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Runner, error) {
	r := &Runner{
		cfg:         cfg,
		log:         log,
		probe:       ffmpeg.Probe,
		newDetector: detect.New,
		progressOut: os.Stderr,
	}
	if cfg.CachePath != "" {
		store, err := cache.Open(ctx, cfg.CachePath)
		if err != nil {
			return nil, err
		}
		if n, err := store.Prune(ctx, cacheMaxAge); err != nil {
			log.Warn("cache prune failed", "err", err)
		} else if n > 0 {
			log.Debug("pruned cache", "entries", n)
		}
		r.cache = store
	}
	return r, nil
}

// Close releases resources held by the Runner.
func (r *Runner) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}

// Run is the top-level entry point. It dispatches on the input: a scene
// file to re-split, a single video, or a directory of videos.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) (Stats, error) {
	r, err := NewRunner(ctx, cfg, log)
	if err != nil {
		return Stats{}, err
	}
	defer r.Close()
	return r.Run(ctx)
}

// Run processes r's configured input.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	start := time.Now()

	switch {
	case r.cfg.SplitOnly != "":
		stats.Total = 1
		n, err := r.SplitOnly(ctx)
		if err != nil {
			stats.Failed++
			return stats, err
		}
		stats.Processed++
		stats.Scenes += n
		return stats, nil

	case isDir(r.cfg.Input):
		if err := r.batch(ctx, &stats); err != nil {
			return stats, err
		}

	default:
		stats.Total = 1
		n, err := r.ProcessFile(ctx, r.cfg.Input, r.cfg.Output)
		if err != nil {
			stats.Failed++
			return stats, err
		}
		stats.Processed++
		stats.Scenes += n
		return stats, nil
	}

	r.logSummary(&stats, time.Since(start))
	if err := ctx.Err(); err != nil && !r.cfg.Watch {
		return stats, err
	}
	return stats, stats.Err()
}

// batch processes every media file under the input directory, then hands
// over to watch mode if it is enabled.
func (r *Runner) batch(ctx context.Context, stats *Stats) error {
	files, err := Discover(r.cfg.Input)
	if err != nil {
		return fmt.Errorf("file discovery failed: %w", err)
	}
	stats.Total = len(files)
	r.log.Info("discovered videos", "dir", r.cfg.Input, "count", len(files))

	for i, path := range files {
		if ctx.Err() != nil {
			r.log.Warn("interrupted")
			return nil
		}
		r.log.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(files), filepath.Base(path)))
		out := OutputPath(r.cfg.Input, r.cfg.Output, path, r.cfg.Compression)
		r.batchFile(ctx, path, out, r.cfg.SkipExisting, stats)
	}

	if r.cfg.Watch {
		return r.watch(ctx, stats)
	}
	return nil
}

// batchFile processes one file of a batch, recording the outcome in stats.
// Errors are logged rather than returned so the batch can continue.
func (r *Runner) batchFile(ctx context.Context, path, out string, skipExisting bool, stats *Stats) {
	if skipExisting {
		if _, err := os.Stat(out); err == nil {
			r.log.Info("skip (exists)", "output", out)
			stats.Skipped++
			return
		}
	}
	n, err := r.ProcessFile(ctx, path, out)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Error("failed", "path", path, "err", err)
		stats.Failed++
		return
	}
	stats.Processed++
	stats.Scenes += n
}

// ProcessFile detects scene changes in path, splits long scenes, and writes
// the boundaries to out. It returns the number of boundaries written.
func (r *Runner) ProcessFile(ctx context.Context, path, out string) (int, error) {
	info, err := r.probe(ctx, path)
	if err != nil {
		return 0, errors.Wrapf(err, "probe %s", path)
	}

	rate := r.cfg.Rate()
	if !rate.Valid() {
		rate = info.Rate
	}
	src := *info
	src.Rate = rate

	res, err := r.detect(ctx, detect.Source{Path: path, Info: &src})
	if err != nil {
		return 0, errors.Wrap(err, "scene detection failed")
	}

	total := r.cfg.TotalFrames
	if total == 0 {
		total = res.FrameCount
	}
	return r.finish(res.SceneChanges, total, rate, out)
}

// SplitOnly re-splits an existing scene file without decoding. The frame
// count and rate come from the command line, or from probing the input
// video when one is given.
func (r *Runner) SplitOnly(ctx context.Context) (int, error) {
	starts, err := sceneio.ReadFile(r.cfg.SplitOnly)
	if err != nil {
		return 0, err
	}

	total, rate := r.cfg.TotalFrames, r.cfg.Rate()
	if r.cfg.Input != "" && (total == 0 || !rate.Valid()) {
		info, err := r.probe(ctx, r.cfg.Input)
		if err != nil {
			return 0, errors.Wrapf(err, "probe %s", r.cfg.Input)
		}
		if total == 0 {
			total = info.EstimatedFrames()
		}
		if !rate.Valid() {
			rate = info.Rate
		}
	}
	if total <= 0 {
		return 0, errors.Errorf("cannot determine the frame count of %s", r.cfg.Input)
	}
	return r.finish(starts, total, rate, r.cfg.Output)
}

// detect runs detection on src, consulting the cache first when enabled.
func (r *Runner) detect(ctx context.Context, src detect.Source) (*detect.Result, error) {
	opts := r.cfg.DetectOptions()

	var key cache.Key
	if r.cache != nil {
		var err error
		if key, err = cache.KeyFor(src.Path, opts); err != nil {
			return nil, err
		}
		res, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.Warn("cache read failed", "err", err)
		} else if ok {
			r.log.Debug("cache hit", "path", src.Path, "scenes", len(res.SceneChanges))
			return res, nil
		}
	}

	var (
		obs detect.Observer
		bar *display.ProgressBar
	)
	if r.cfg.Progress {
		bar = display.NewProgressBar(r.progressOut, filepath.Base(src.Path), src.Info.EstimatedFrames())
		obs = bar
	}

	det, err := r.newDetector(opts, obs, r.log)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	res, err := det.Detect(ctx, src)
	if err != nil {
		if bar != nil {
			bar.Finish()
		}
		return nil, err
	}
	attrs := []any{"path", src.Path, "cuts", len(res.SceneChanges),
		"frames", res.FrameCount, "elapsed", display.FormatDuration(time.Since(started))}
	if bar != nil {
		// Below 100% means the container over-reported its length.
		attrs = append(attrs, "estimate_reached", fmt.Sprintf("%.0f%%", bar.Percent()))
		bar.Finish()
	}
	r.log.Debug("detection finished", attrs...)

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, res); err != nil {
			r.log.Warn("cache write failed", "err", err)
		}
	}
	return res, nil
}

// finish normalizes changes, splits long scenes, and writes the result.
func (r *Runner) finish(changes []int, total int, rate scene.Rate, out string) (int, error) {
	starts := scene.Normalize(changes)
	if i, _ := slices.BinarySearch(starts, total); i < len(starts) && i > 0 {
		r.log.Warn("dropping scene changes past the last frame", "count", len(starts)-i, "total_frames", total)
		starts = starts[:i]
	}

	maxFrames := scene.MaxFrames(rate, r.cfg.MaxSceneSecs, r.cfg.MaxSceneFrames)
	split, err := scene.Split(starts, total, maxFrames)
	if err != nil {
		return 0, err
	}
	if err := sceneio.WriteFile(out, split, r.cfg.Compression); err != nil {
		return 0, errors.Wrap(err, "create output file")
	}

	r.log.Info("scenes written",
		"output", out,
		"detected", len(starts),
		"final", len(split),
		"max_scene", display.FormatFrames(maxFrames, rate),
		"longest", display.FormatFrames(slices.Max(scene.Gaps(split, total)), rate))
	return len(split), nil
}

func (r *Runner) logSummary(stats *Stats, elapsed time.Duration) {
	r.log.Info("summary",
		"total", stats.Total,
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"scenes", stats.Scenes,
		"elapsed", display.FormatDuration(elapsed))
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
