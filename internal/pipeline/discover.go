package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"shear/internal/sceneio"
)

// Supported media file extensions (lowercase, with leading dot).
var mediaExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".m4v":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".ts":   true,
	".m2ts": true,
	".mpg":  true,
	".mpeg": true,
	".y4m":  true,
	".ivf":  true,
}

// sceneExt is the extension of scene files written in batch mode, before
// any compression suffix.
const sceneExt = ".scenes"

// IsMedia reports whether path has a media file extension.
func IsMedia(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover walks inputDir and returns the media files in it, sorted
// lexicographically. Hidden files and directories are skipped.
func Discover(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != inputDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && IsMedia(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath maps a media file under inputDir to its scene file under
// outputDir, keeping the relative directory layout:
// "in/show/ep1.mkv" becomes "out/show/ep1.scenes.zst" with zstd.
func OutputPath(inputDir, outputDir, path string, c sceneio.Compression) string {
	rel, err := filepath.Rel(inputDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.Join(outputDir, stem+sceneExt+c.Ext())
}
