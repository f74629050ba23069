package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"shear/internal/scene"
)

// ErrNoVideoStream is returned when the probed file has no decodable video.
var ErrNoVideoStream = errors.New("no video stream found")

// VideoInfo describes the primary video stream of a file.
type VideoInfo struct {
	Width    int
	Height   int
	Rate     scene.Rate
	Frames   int     // nb_frames when the container reports it, else 0.
	Duration float64 // Seconds; stream duration, falling back to the format's.
	Codec    string
	PixFmt   string
}

// EstimatedFrames returns the reported frame count, or one derived from
// duration and frame rate when the container does not carry it.
func (v *VideoInfo) EstimatedFrames() int {
	if v.Frames > 0 {
		return v.Frames
	}
	return int(math.Round(v.Duration * v.Rate.Float()))
}

// Scaled returns analysis dimensions no wider than width, keeping the aspect
// ratio and rounding the height to an even number of at least 2.
func (v *VideoInfo) Scaled(width int) (int, int) {
	if v.Width <= 0 || v.Height <= 0 {
		return width, max(width*9/16/2*2, 2)
	}
	w := min(width, v.Width)
	w -= w % 2
	h := int(math.Round(float64(v.Height) * float64(w) / float64(v.Width)))
	h -= h % 2
	return max(w, 2), max(h, 2)
}

// Probe runs ffprobe against path and returns its primary video stream.
func Probe(ctx context.Context, path string) (*VideoInfo, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return nil, errors.Wrap(ErrNotFound, "ffprobe")
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrapf(err, "ffprobe %q", path)
	}
	return ParseProbe(out)
}

// ParseProbe converts raw ffprobe JSON output into a VideoInfo.
// Exported for testing without a real ffprobe binary.
func ParseProbe(data []byte) (*VideoInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		info := &VideoInfo{
			Width:    s.Width,
			Height:   s.Height,
			Rate:     streamRate(s),
			Frames:   parseInt(s.NbFrames),
			Duration: parseFloat(s.Duration),
			Codec:    s.CodecName,
			PixFmt:   s.PixFmt,
		}
		if info.Duration <= 0 {
			info.Duration = parseFloat(raw.Format.Duration)
		}
		return info, nil
	}
	return nil, ErrNoVideoStream
}

// streamRate prefers avg_frame_rate; variable or missing rates show up as
// "0/0" there, in which case r_frame_rate is used.
func streamRate(s *ffprobeStream) scene.Rate {
	for _, v := range []string{s.AvgFrameRate, s.RFrameRate} {
		if r, err := scene.ParseRate(v); err == nil && r.Valid() {
			return r
		}
	}
	return scene.Rate{}
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

type ffprobeStream struct {
	Index        int            `json:"index"`
	CodecName    string         `json:"codec_name"`
	CodecType    string         `json:"codec_type"`
	PixFmt       string         `json:"pix_fmt"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	RFrameRate   string         `json:"r_frame_rate"`
	NbFrames     string         `json:"nb_frames"`
	Duration     string         `json:"duration"`
	Disposition  map[string]int `json:"disposition"`
}

// ffprobe returns numbers as strings.

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
