package detect

import (
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"shear/internal/ffmpeg"
	"shear/internal/imageproc"
	"shear/internal/video"
	"shear/internal/worker"
)

// framesPerJob is how many frames one worker job covers.
const framesPerJob = 8

// Native detects cuts by decoding frames at analysis size and comparing
// colour signatures of consecutive frames.
type Native struct {
	opts Options
	obs  Observer
	log  *slog.Logger
}

// Detect decodes src and returns the cuts found in it.
func (n *Native) Detect(ctx context.Context, src Source) (*Result, error) {
	width, height := src.Info.Scaled(n.opts.analysis().width)

	dec, err := ffmpeg.StartDecoder(ctx, ffmpeg.DecodeOptions{Input: src.Path, Width: width, Height: height})
	if err != nil {
		return nil, errors.Wrap(err, "create ffmpeg decoder")
	}
	n.log.Debug("decoding", "path", src.Path, "width", width, "height", height,
		"speed", n.opts.Speed, "lookahead", n.opts.lookahead())

	res, err := n.analyze(ctx, dec, width, height)
	if err != nil {
		_ = dec.Close()
		return nil, err
	}
	if err := dec.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// analyze reads rgb24 frames of width×height from r until EOF.
func (n *Native) analyze(ctx context.Context, r io.Reader, width, height int) (*Result, error) {
	grid := n.opts.analysis().grid
	workers := max(n.opts.Workers, 1)
	round := workers * framesPerJob
	frameSize := width * height * 3

	reader := video.NewReader(r, frameSize, video.NewBufferPool(frameSize, round))
	finder := newCutFinder(n.opts.Threshold, n.opts.lookahead())
	progress := newCheckpoint(n.obs)

	signature := func(f video.Frame) imageproc.Signature {
		return imageproc.NewSignature(f, width, height, grid)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frames, readErr := reader.ReadBatch(round)
		if len(frames) > 0 {
			sigs, err := worker.Map(ctx, video.Chunk(frames, framesPerJob), workers, signature)
			reader.Release(frames)
			if err != nil {
				return nil, err
			}
			for _, batch := range sigs {
				for _, sig := range batch {
					finder.push(sig)
				}
			}
			progress.advance(reader.Count())
		}

		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if errors.Is(readErr, video.ErrShortFrame) {
			n.log.Warn("decoder output ended mid-frame, last partial frame dropped", "frames", reader.Count())
			break
		}
		return nil, errors.Wrap(readErr, "read decoded frames")
	}

	finder.flush()
	progress.finish(reader.Count())

	for i, frame := range finder.flashes {
		n.log.Debug("flash ignored", "frame", frame, "luma", math.Round(finder.flashLumas[i]*100)/100)
	}
	return &Result{SceneChanges: finder.cuts, FrameCount: reader.Count()}, nil
}
