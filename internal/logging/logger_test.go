package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Options{Console: &buf, Color: ColorNever})
	require.NoError(t, err)
	defer closer.Close()

	log.Debug("hidden")
	log.Info("detecting", "path", "ep01.mkv")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "detecting")
	assert.Contains(t, out, "path=ep01.mkv")
	assert.NotContains(t, out, "\x1b[", "no ANSI codes when color is off")
}

func TestNew_VerboseAndColor(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(Options{Console: &buf, Color: ColorAlways, Verbose: true})
	require.NoError(t, err)

	log.Debug("window", "frames", 6)
	assert.Contains(t, buf.String(), "window")
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestNew_FileSink(t *testing.T) {
	tests := []struct {
		name string
		json bool
	}{
		{"text", false},
		{"json", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "shear.log")
			require.NoError(t, os.WriteFile(path, []byte("earlier run\n"), 0o644))

			var console bytes.Buffer
			log, closer, err := New(Options{Console: &console, Color: ColorNever, File: path, JSON: tt.json})
			require.NoError(t, err)

			log.With("file", "ep02.mkv").Warn("short frame dropped")
			require.NoError(t, closer.Close())

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			require.Len(t, lines, 2, "log file is appended to")
			assert.Equal(t, "earlier run", lines[0])

			if tt.json {
				var rec map[string]any
				require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
				assert.Equal(t, "WARN", rec["level"])
				assert.Equal(t, "ep02.mkv", rec["file"])
			} else {
				assert.Contains(t, lines[1], "level=WARN")
				assert.Contains(t, lines[1], "file=ep02.mkv")
			}
			assert.Contains(t, console.String(), "short frame dropped")
		})
	}
}

func TestNew_BadFile(t *testing.T) {
	_, _, err := New(Options{Console: &bytes.Buffer{}, File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestUseColor_NonFileWriter(t *testing.T) {
	assert.False(t, useColor(ColorAuto, &bytes.Buffer{}))
	assert.True(t, useColor(ColorAlways, &bytes.Buffer{}))
}
