package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"shear/internal/scene"
)

// Example: [Parsed_showinfo_1 @ 0x55d0c8] n:   3 pts: 135052 pts_time:135.052 duration:...
var ptsTimeRe = regexp.MustCompile(`pts_time:\s*(\d+(?:\.\d+)?)`)

// SceneFilterResult is the outcome of an ffmpeg scene filter pass.
type SceneFilterResult struct {
	Changes []int // Frame indices where ffmpeg reported a scene change, in stream order.
	Frames  int   // Frames decoded, from ffmpeg's progress report.
}

// SceneFilterArgs returns the ffmpeg arguments for a scene filter pass:
// frames whose scene score exceeds threshold are logged by showinfo on
// stderr, and machine-readable progress goes to stdout.
func SceneFilterArgs(path string, threshold float64) []string {
	args := append([]string{}, globalArgs...)
	return append(args,
		"-nostats",
		"-progress", "pipe:1",
		"-i", path,
		"-an", "-sn", "-dn",
		"-vf", fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold),
		"-f", "null", "-",
	)
}

// RunSceneFilter runs ffmpeg's scene detection on path. rate converts
// presentation times to frame indices. progress, if non-nil, receives the
// running decoded frame count.
func RunSceneFilter(ctx context.Context, path string, threshold float64, rate scene.Rate, progress func(frames int)) (*SceneFilterResult, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.Wrap(ErrNotFound, "ffmpeg")
	}
	if !rate.Valid() {
		return nil, errors.Errorf("scene filter needs a frame rate, got %s", rate)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", SceneFilterArgs(path, threshold)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stderr pipe")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "start ffmpeg")
	}

	tail := &tailBuffer{limit: stderrTail}
	res, readErr := readSceneFilterOutput(stdout, stderr, tail, rate, progress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrapf(err, "ffmpeg scene filter failed: %s", tail.String())
	}
	if readErr != nil {
		return nil, readErr
	}
	return res, nil
}

// readSceneFilterOutput parses progress from stdout and showinfo lines from
// stderr concurrently. Both pipes are read to EOF even when parsing stops
// early, so ffmpeg never blocks on a full pipe. stderr is copied into tail.
func readSceneFilterOutput(stdout, stderr io.Reader, tail *tailBuffer, rate scene.Rate, progress func(frames int)) (*SceneFilterResult, error) {
	var (
		wg                    sync.WaitGroup
		res                   SceneFilterResult
		progressErr, parseErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Frames, progressErr = ParseProgress(stdout, progress)
		_, _ = io.Copy(io.Discard, stdout)
	}()
	go func() {
		defer wg.Done()
		res.Changes, parseErr = ParseShowinfo(io.TeeReader(stderr, tail), rate)
		_, _ = io.Copy(tail, stderr)
	}()
	wg.Wait()

	if parseErr != nil {
		return nil, errors.Wrap(parseErr, "read showinfo output")
	}
	if progressErr != nil {
		return nil, errors.Wrap(progressErr, "read progress output")
	}
	return &res, nil
}

// ParseShowinfo extracts showinfo pts_time values from ffmpeg log output and
// converts them to frame indices at rate.
func ParseShowinfo(r io.Reader, rate scene.Rate) ([]int, error) {
	fps := rate.Float()
	var frames []int

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "showinfo") {
			continue
		}
		m := ptsTimeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		pts, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		frames = append(frames, int(math.Round(pts*fps)))
	}
	return frames, sc.Err()
}

// ParseProgress reads "-progress" key=value output and reports every
// frame= value to fn. It returns the last frame count seen.
func ParseProgress(r io.Reader, fn func(frames int)) (int, error) {
	last := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), "=")
		if !ok || strings.TrimSpace(key) != "frame" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			continue
		}
		last = n
		if fn != nil {
			fn(n)
		}
	}
	return last, sc.Err()
}
