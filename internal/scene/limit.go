package scene

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rate is a frame rate expressed as a rational number, as ffprobe reports it.
type Rate struct {
	Num int
	Den int
}

// Valid reports whether the rate describes a positive frame rate.
func (r Rate) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Float returns the rate in frames per second, or 0 for an invalid rate.
func (r Rate) Float() float64 {
	if !r.Valid() {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rate) String() string {
	if r.Den == 1 {
		return strconv.Itoa(r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// ParseRate accepts "num/den", an integer, or a decimal such as "29.97".
// Decimals are kept to three places.
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 != nil || err2 != nil {
			return Rate{}, fmt.Errorf("invalid frame rate %q", s)
		}
		return Rate{Num: n, Den: d}, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Rate{Num: n, Den: 1}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return Rate{}, fmt.Errorf("invalid frame rate %q", s)
	}
	return Rate{Num: int(math.Round(f * 1000)), Den: 1000}, nil
}

// MaxFrames derives the scene length limit in frames: the smaller of
// maxSecs worth of frames (rounded up) and maxFrames. When the rate is
// unknown or maxSecs is not positive, maxFrames applies on its own.
func MaxFrames(rate Rate, maxSecs float64, maxFrames int) int {
	if !rate.Valid() || maxSecs <= 0 {
		return maxFrames
	}
	// The epsilon absorbs float error: 0.1s at 30fps is 3.0000000000000004.
	bySecs := int(math.Ceil(maxSecs*float64(rate.Num)/float64(rate.Den) - 1e-9))
	return min(bySecs, maxFrames)
}
