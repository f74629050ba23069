package check

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes an executable shell script named name into dir.
func fakeTool(t *testing.T, dir, name, output string) {
	t.Helper()
	script := "#!/bin/sh\necho '" + output + "'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755))
}

func TestCheckDeps(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes")
	}
	dir := t.TempDir()
	t.Setenv("PATH", dir)

	assert.ErrorIs(t, CheckDeps(), ErrFFmpegNotFound)

	fakeTool(t, dir, "ffmpeg", "ffmpeg version 7.1")
	assert.ErrorIs(t, CheckDeps(), ErrFFprobeNotFound)

	fakeTool(t, dir, "ffprobe", "ffprobe version 7.1")
	assert.NoError(t, CheckDeps())
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes")
	}
	dir := t.TempDir()
	t.Setenv("PATH", dir)
	fakeTool(t, dir, "ffmpeg", "ffmpeg version 7.1 Copyright (c) 2000-2024")

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	err := Run(context.Background(), log)
	assert.ErrorIs(t, err, ErrFFprobeNotFound)
	assert.Contains(t, buf.String(), "ffmpeg version 7.1")
	assert.Contains(t, buf.String(), "ffprobe not found")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "ffmpeg version 6.0", firstLine("  ffmpeg version 6.0\nbuilt with gcc\n"))
	assert.Equal(t, "", firstLine(""))
}
