package scene

import "slices"

// Normalize prepares raw detector output for Split. Negative indices are
// dropped, the rest are sorted and deduplicated, and frame 0 is seeded when
// it is missing. The input slice is left untouched.
func Normalize(candidates []int) []int {
	out := make([]int, 0, len(candidates)+1)
	for _, f := range candidates {
		if f >= 0 {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)

	if len(out) == 0 || out[0] != 0 {
		out = slices.Insert(out, 0, 0)
	}
	return out
}
