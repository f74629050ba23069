// Package ffmpeg wraps the ffmpeg and ffprobe binaries: probing stream
// parameters, decoding downscaled raw frames over a pipe, and running the
// scene filter.
package ffmpeg

import (
	"context"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// ErrNotFound is returned when ffmpeg or ffprobe is missing from $PATH.
var ErrNotFound = errors.New("not found in $PATH")

// stderrTail bounds how much ffmpeg stderr is kept for error messages.
const stderrTail = 4096

// globalArgs precede every ffmpeg invocation.
var globalArgs = []string{"-hide_banner", "-nostdin"}

// DecodeOptions describes a raw rgb24 decode of a file at analysis size.
type DecodeOptions struct {
	Input  string
	Width  int
	Height int
}

// FrameSize is the byte length of one decoded frame.
func (o DecodeOptions) FrameSize() int {
	return o.Width * o.Height * 3
}

// DecodeArgs returns the ffmpeg arguments (without the binary name) that
// scale the first video stream and write raw rgb24 frames to stdout.
func DecodeArgs(opts DecodeOptions) []string {
	stream := ffmpeggo.Input(opts.Input).
		Filter("scale", ffmpeggo.Args{}, ffmpeggo.KwArgs{
			"w": strconv.Itoa(opts.Width),
			"h": strconv.Itoa(opts.Height),
		}).
		Output("pipe:1", ffmpeggo.KwArgs{
			"f":       "rawvideo",
			"pix_fmt": "rgb24",
		})

	args := append([]string{}, globalArgs...)
	args = append(args, "-loglevel", "error")
	return append(args, stream.GetArgs()...)
}

// Decoder is a running ffmpeg process producing raw frames on its stdout.
type Decoder struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer
	ctx    context.Context
	once   sync.Once
	err    error
}

// StartDecoder launches ffmpeg for opts. The process is killed when ctx is
// canceled. Callers read frames from the Decoder and then call Wait.
func StartDecoder(ctx context.Context, opts DecodeOptions) (*Decoder, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.Wrap(ErrNotFound, "ffmpeg")
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", DecodeArgs(opts)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "stdout pipe")
	}
	stderr := &tailBuffer{limit: stderrTail}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "start ffmpeg")
	}
	return &Decoder{cmd: cmd, stdout: stdout, stderr: stderr, ctx: ctx}, nil
}

// Read reads decoded frame bytes.
func (d *Decoder) Read(p []byte) (int, error) {
	return d.stdout.Read(p)
}

// Wait waits for ffmpeg to exit. It must be called after stdout has been
// drained. A non-zero exit is reported with the tail of ffmpeg's stderr.
func (d *Decoder) Wait() error {
	d.once.Do(func() {
		err := d.cmd.Wait()
		switch {
		case d.ctx.Err() != nil:
			d.err = d.ctx.Err()
		case err != nil:
			d.err = errors.Wrapf(err, "ffmpeg decode failed: %s", d.stderr.String())
		}
	})
	return d.err
}

// Close stops a decoder that is abandoned before end of stream.
func (d *Decoder) Close() error {
	_ = d.stdout.Close()
	_ = d.cmd.Process.Kill()
	err := d.Wait()
	if d.ctx.Err() != nil {
		return err
	}
	// Killed on purpose; the exit status carries no information.
	return nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
