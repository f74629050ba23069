package scene

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name      string
		starts    []int
		total     int
		maxFrames int
		want      []int
	}{
		{"already short", []int{0, 100, 200}, 300, 150, []int{0, 100, 200}},
		{"single scene two chunks", []int{0}, 400, 250, []int{0, 200}},
		{"single scene four chunks", []int{0}, 1000, 300, []int{0, 250, 500, 750}},
		{"middle and last scene split", []int{0, 100, 600}, 900, 200, []int{0, 100, 266, 432, 600, 750}},
		{"empty input", []int{}, 1000, 300, []int{}},
		{"nil input", nil, 1000, 300, []int{}},
		{"length equal to max", []int{0}, 300, 300, []int{0}},
		{"one over max", []int{0}, 301, 300, []int{0, 150}},
		{"zero length scene", []int{0, 50}, 50, 10, []int{0, 10, 20, 30, 40, 50}},
		{"total before last start", []int{0, 500}, 400, 300, []int{0, 250, 500}},
		{"max of one", []int{0}, 4, 1, []int{0, 1, 2, 3}},
		{"remainder absorbed by last chunk", []int{10}, 17, 3, []int{10, 12, 14}},
		{"non zero first start", []int{100}, 400, 100, []int{100, 200, 300}},
		{"remainder overflows last chunk", []int{0}, 99, 10, []int{0, 9, 18, 27, 36, 45, 54, 63, 72, 81}},
		{"tail of three at max two", []int{0}, 5, 2, []int{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.starts, tt.total, tt.maxFrames)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplit_InvalidMaxFrames(t *testing.T) {
	for _, maxFrames := range []int{0, -1} {
		got, err := Split([]int{0, 100}, 200, maxFrames)
		assert.ErrorIs(t, err, ErrInvalidMaxFrames)
		assert.Nil(t, got)
	}
}

func TestSplit_DoesNotMutateInput(t *testing.T) {
	starts := []int{0, 100, 600}
	_, err := Split(starts, 900, 200)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 100, 600}, starts)
}

// randomBoundaries returns a strictly increasing list starting at 0 and a
// total frame count at or past its last element.
func randomBoundaries(r *rand.Rand) ([]int, int) {
	n := 1 + r.IntN(12)
	starts := make([]int, 0, n)
	pos := 0
	for range n {
		starts = append(starts, pos)
		pos += 1 + r.IntN(900)
	}
	return starts, pos + r.IntN(50)
}

func TestSplit_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		starts, total := randomBoundaries(r)
		maxFrames := 1 + r.IntN(400)

		got, err := Split(starts, total, maxFrames)
		require.NoError(t, err)

		// Strictly increasing.
		for j := 1; j < len(got); j++ {
			require.Less(t, got[j-1], got[j], "case %d: %v", i, got)
		}

		// Superset of the input.
		for _, s := range starts {
			_, found := slices.BinarySearch(got, s)
			require.True(t, found, "case %d: boundary %d dropped from %v", i, s, got)
		}

		// Every scene fits, except that the last chunk of a split scene
		// carries the division remainder.
		withinMax := true
		for j, gap := range Gaps(got, total) {
			require.LessOrEqual(t, gap, sceneLimit(starts, total, got[j], maxFrames), "case %d: scene %d of %v", i, j, got)
			if gap > maxFrames {
				withinMax = false
			}
		}

		// Idempotent once every scene fits.
		if withinMax {
			again, err := Split(got, total, maxFrames)
			require.NoError(t, err)
			require.Equal(t, got, again, "case %d", i)
		}
	}
}

// sceneLimit returns the longest output scene allowed at boundary b: the
// limit itself, or for a split input scene its chunk size plus remainder.
func sceneLimit(starts []int, total, b, maxFrames int) int {
	i, found := slices.BinarySearch(starts, b)
	if !found {
		i--
	}
	end := total
	if i+1 < len(starts) {
		end = starts[i+1]
	}
	length := max(end-starts[i], 0)
	if length <= maxFrames {
		return maxFrames
	}
	chunks := (length + maxFrames - 1) / maxFrames
	size := length / chunks
	return max(maxFrames, size+length%chunks)
}

func TestSplit_NoOpWhenShort(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 200; i++ {
		starts, total := randomBoundaries(r)
		longest := slices.Max(Gaps(starts, total))

		got, err := Split(starts, total, max(longest, 1))
		require.NoError(t, err)
		assert.Equal(t, starts, got)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	starts := []int{0, 37, 1200, 1201, 4000}
	first, err := Split(starts, 9000, 240)
	require.NoError(t, err)
	for range 10 {
		got, err := Split(starts, 9000, 240)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestGaps(t *testing.T) {
	assert.Equal(t, []int{100, 500, 300}, Gaps([]int{0, 100, 600}, 900))
	assert.Equal(t, []int{0}, Gaps([]int{500}, 400))
	assert.Empty(t, Gaps(nil, 10))
}
