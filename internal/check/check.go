// Package check validates external tool dependencies before a run and
// prints their versions for --check.
package check

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFFmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFFprobeNotFound = errors.New("ffprobe not found on PATH")
)

// CheckDeps verifies that ffmpeg and ffprobe are on PATH.
func CheckDeps() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFFmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFFprobeNotFound
	}
	return nil
}

// Run logs the version of each tool, or an error for the ones that are
// missing or fail to run. It returns the first failure so --check can set
// the exit code.
func Run(ctx context.Context, log *slog.Logger) error {
	var first error
	for _, tool := range []struct {
		name    string
		missing error
	}{
		{"ffmpeg", ErrFFmpegNotFound},
		{"ffprobe", ErrFFprobeNotFound},
	} {
		if _, err := exec.LookPath(tool.name); err != nil {
			log.Error(tool.missing.Error())
			if first == nil {
				first = tool.missing
			}
			continue
		}
		out, err := exec.CommandContext(ctx, tool.name, "-hide_banner", "-version").Output()
		if err != nil {
			log.Warn("version query failed", "tool", tool.name, "err", err)
			if first == nil {
				first = err
			}
			continue
		}
		log.Info(tool.name, "version", firstLine(string(out)))
	}
	return first
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
