package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty seeds zero", nil, []int{0}},
		{"already normalized", []int{0, 48, 96}, []int{0, 48, 96}},
		{"missing zero", []int{48, 96}, []int{0, 48, 96}},
		{"unsorted with duplicates", []int{96, 0, 48, 48, 96}, []int{0, 48, 96}},
		{"negatives dropped", []int{-5, 12}, []int{0, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []int{30, 10, 20}
	Normalize(in)
	assert.Equal(t, []int{30, 10, 20}, in)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    Rate
		wantErr bool
	}{
		{"24000/1001", Rate{24000, 1001}, false},
		{"25", Rate{25, 1}, false},
		{" 30/1 ", Rate{30, 1}, false},
		{"29.97", Rate{29970, 1000}, false},
		{"0/0", Rate{0, 0}, false},
		{"abc", Rate{}, true},
		{"30/x", Rate{}, true},
		{"-1.5", Rate{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRate(t *testing.T) {
	assert.Equal(t, "24000/1001", Rate{24000, 1001}.String())
	assert.Equal(t, "25", Rate{25, 1}.String())
	assert.InDelta(t, 23.976, Rate{24000, 1001}.Float(), 0.001)
	assert.Zero(t, Rate{30, 0}.Float())
	assert.False(t, Rate{0, 1}.Valid())
}

func TestMaxFrames(t *testing.T) {
	tests := []struct {
		name      string
		rate      Rate
		secs      float64
		maxFrames int
		want      int
	}{
		{"frame limit wins at 30fps", Rate{30, 1}, 20, 300, 300},
		{"seconds limit wins at 24fps", Rate{24, 1}, 10, 300, 240},
		{"ntsc film rounds up", Rate{24000, 1001}, 10, 300, 240},
		{"ntsc video rounds up", Rate{30000, 1001}, 10, 1000, 300},
		{"exact product not bumped", Rate{30, 1}, 0.1, 300, 3},
		{"unknown rate", Rate{0, 0}, 10, 300, 300},
		{"seconds disabled", Rate{60, 1}, 0, 300, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxFrames(tt.rate, tt.secs, tt.maxFrames))
		})
	}
}
