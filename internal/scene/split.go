// Package scene turns detected scene changes into a boundary list that is
// safe to hand to a chunked encoder: normalized, seeded at frame 0, and with
// no scene longer than a configured maximum.
package scene

import (
	"errors"
	"slices"
)

// ErrInvalidMaxFrames is returned by Split when the scene length limit is not positive.
var ErrInvalidMaxFrames = errors.New("max scene frames must be positive")

// Split subdivides every scene longer than maxFrames into ceil(len/maxFrames)
// chunks of equal length, except the last, which absorbs the remainder. The
// remainder can push that last chunk past maxFrames (99 frames at a limit of
// 10 gives nine chunks of 9 and one of 18).
//
// starts must be strictly increasing. The last scene ends at totalFrames.
// Every input boundary appears in the result; only split points are added.
func Split(starts []int, totalFrames, maxFrames int) ([]int, error) {
	if maxFrames <= 0 {
		return nil, ErrInvalidMaxFrames
	}

	out := make([]int, 0, len(starts))
	for i, start := range starts {
		end := totalFrames
		if i+1 < len(starts) {
			end = starts[i+1]
		}

		out = append(out, start)

		length := max(end-start, 0)
		if length <= maxFrames {
			continue
		}

		chunks := (length + maxFrames - 1) / maxFrames
		size := length / chunks
		for j := 1; j < chunks; j++ {
			if point := start + j*size; point < end {
				out = append(out, point)
			}
		}
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}

// Gaps returns the length of every scene, the last one running to totalFrames.
func Gaps(starts []int, totalFrames int) []int {
	gaps := make([]int, len(starts))
	for i, start := range starts {
		end := totalFrames
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		gaps[i] = max(end-start, 0)
	}
	return gaps
}
