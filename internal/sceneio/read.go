package sceneio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrMalformedLine is returned for a line that is not a non-negative integer.
var ErrMalformedLine = errors.New("malformed scene line")

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Read parses a scene list from r, decompressing zstd or gzip input
// transparently. Blank lines are skipped. The order of the file is kept.
func Read(r io.Reader) ([]int, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		src = dec
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip decoder: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var starts []int
	sc := bufio.NewScanner(src)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w %d: %q", ErrMalformedLine, line, text)
		}
		starts = append(starts, n)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return starts, nil
}

// ReadFile reads the scene list stored at path.
func ReadFile(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	starts, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return starts, nil
}
