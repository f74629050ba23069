package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shear/internal/sceneio"
)

func TestRun_ExitCodes(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	tests := []struct {
		name       string
		args       []string
		want       int
		wantStdout string
		wantStderr string
	}{
		{"help", []string{"--help"}, exitOK, "Usage:", ""},
		{"version", []string{"--version"}, exitOK, "shear v", ""},
		{"unknown flag", []string{"--bogus"}, exitUsage, "", "see --help"},
		{"missing output", []string{"--input", "in.mkv"}, exitUsage, "", "need --output"},
		{"zero max frames", []string{"--max-scene-frames", "0", "in.mkv", "out.scenes"}, exitUsage, "", "max scene frames must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			got := run(tt.args, &stdout, &stderr)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, stdout.String(), tt.wantStdout)
			assert.Contains(t, stderr.String(), tt.wantStderr)
		})
	}
}

func TestRun_SplitOnly(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	in := filepath.Join(dir, "in.scenes")
	out := filepath.Join(dir, "out.scenes")
	require.NoError(t, sceneio.WriteFile(in, []int{0, 50}, sceneio.CompressNone))

	// No video to probe, so ffmpeg is not needed.
	t.Setenv("PATH", dir)
	var stdout, stderr bytes.Buffer
	code := run([]string{"--split-only", in, "--total-frames", "120", "--max-scene-frames", "40", "--output", out, "--no-color"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	got, err := sceneio.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 25, 50, 85}, got)
}

func TestRun_MissingFFmpeg(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	t.Setenv("PATH", dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--no-color", filepath.Join(dir, "in.mkv"), filepath.Join(dir, "out.scenes")}, &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "ffmpeg not found")
}
