// Package sceneio reads and writes scene files: one starting frame index per
// line, ascending, optionally zstd or gzip compressed.
package sceneio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the encoding of a scene file.
type Compression string

const (
	CompressAuto Compression = "auto" // Pick from the file extension (default).
	CompressNone Compression = "none" // Plain text.
	CompressZstd Compression = "zstd" // Zstandard, ".zst".
	CompressGzip Compression = "gzip" // Gzip, ".gz".
)

// CompressionFor returns the compression implied by a path's extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressZstd
	case ".gz":
		return CompressGzip
	default:
		return CompressNone
	}
}

// Ext returns the file extension conventionally used for c.
func (c Compression) Ext() string {
	switch c {
	case CompressZstd:
		return ".zst"
	case CompressGzip:
		return ".gz"
	default:
		return ""
	}
}

// Write writes starts to w, one index per line.
func Write(w io.Writer, starts []int) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 16)
	for _, s := range starts {
		buf = strconv.AppendInt(buf[:0], int64(s), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes starts to path, creating parent directories. The file is
// written under a temporary name and renamed into place, so readers never
// see a partial list.
func WriteFile(path string, starts []int, c Compression) (err error) {
	if c == CompressAuto || c == "" {
		c = CompressionFor(path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := encode(tmp, starts, c); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func encode(w io.Writer, starts []int, c Compression) error {
	switch c {
	case CompressNone:
		return Write(w, starts)
	case CompressZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		if err := Write(enc, starts); err != nil {
			enc.Close()
			return err
		}
		return enc.Close()
	case CompressGzip:
		gz := gzip.NewWriter(w)
		if err := Write(gz, starts); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	default:
		return fmt.Errorf("unknown compression %q", c)
	}
}
