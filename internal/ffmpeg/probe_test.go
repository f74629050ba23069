package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shear/internal/scene"
)

const mkvProbeJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "avg_frame_rate": "0/0",
      "r_frame_rate": "90000/1",
      "disposition": {"default": 0, "attached_pic": 1}
    },
    {
      "index": 1,
      "codec_name": "h264",
      "codec_type": "video",
      "pix_fmt": "yuv420p",
      "width": 1920,
      "height": 1080,
      "avg_frame_rate": "24000/1001",
      "r_frame_rate": "24000/1001",
      "disposition": {"default": 1, "attached_pic": 0}
    },
    {
      "index": 2,
      "codec_name": "aac",
      "codec_type": "audio",
      "disposition": {"default": 1}
    }
  ],
  "format": {
    "filename": "episode.mkv",
    "format_name": "matroska,webm",
    "duration": "1320.570000"
  }
}`

const mp4ProbeJSON = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "hevc",
      "codec_type": "video",
      "pix_fmt": "yuv420p10le",
      "width": 3840,
      "height": 1608,
      "avg_frame_rate": "25/1",
      "r_frame_rate": "25/1",
      "nb_frames": "3000",
      "duration": "120.000000"
    }
  ],
  "format": {"filename": "clip.mp4", "duration": "120.021333"}
}`

func TestParseProbe_MKVSkipsCoverArt(t *testing.T) {
	info, err := ParseProbe([]byte(mkvProbeJSON))
	require.NoError(t, err)

	assert.Equal(t, "h264", info.Codec)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, scene.Rate{Num: 24000, Den: 1001}, info.Rate)
	assert.Zero(t, info.Frames)
	assert.InDelta(t, 1320.57, info.Duration, 1e-6)
	// No nb_frames in Matroska; derived from duration.
	assert.Equal(t, 31662, info.EstimatedFrames())
}

func TestParseProbe_MP4(t *testing.T) {
	info, err := ParseProbe([]byte(mp4ProbeJSON))
	require.NoError(t, err)

	assert.Equal(t, 3000, info.Frames)
	assert.Equal(t, 3000, info.EstimatedFrames())
	assert.Equal(t, "yuv420p10le", info.PixFmt)
	assert.InDelta(t, 120.0, info.Duration, 1e-6)
}

func TestParseProbe_FallsBackToRFrameRate(t *testing.T) {
	data := `{"streams":[{"codec_type":"video","width":640,"height":480,
		"avg_frame_rate":"0/0","r_frame_rate":"30000/1001"}],"format":{}}`
	info, err := ParseProbe([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, scene.Rate{Num: 30000, Den: 1001}, info.Rate)
}

func TestParseProbe_Errors(t *testing.T) {
	_, err := ParseProbe([]byte(`{"streams":[{"codec_type":"audio"}],"format":{}}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = ParseProbe([]byte(`not json`))
	assert.Error(t, err)
}

func TestVideoInfo_Scaled(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		target        int
		wantW, wantH  int
	}{
		{"1080p to 320", 1920, 1080, 320, 320, 180},
		{"scope to 160", 3840, 1608, 160, 160, 66},
		{"smaller than target", 240, 180, 320, 240, 180},
		{"odd source", 721, 481, 320, 320, 212},
		{"unknown size", 0, 0, 320, 320, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &VideoInfo{Width: tt.width, Height: tt.height}
			w, h := v.Scaled(tt.target)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}
