package detect

import "shear/internal/imageproc"

// cutFinder decides, frame by frame, where scene cuts fall in a stream of
// signatures. It keeps only the window needed for the flash lookahead.
//
// Frame c is a cut when it differs from frame c-1 by at least threshold.
// With a lookahead, a change that reverts to within threshold of frame c-1
// by frame c+k (k ≤ lookahead) is a flash instead: no cut is recorded and
// frames c..c+k are skipped.
type cutFinder struct {
	threshold float64
	lookahead int

	win   []imageproc.Signature // Signatures of frames first..first+len(win)-1.
	first int
	next  int // Next frame to decide. Frame 0 never is a cut.

	cuts       []int
	flashes    []int
	flashLumas []float64 // Lightness of the first frame of each flash.
}

func newCutFinder(threshold float64, lookahead int) *cutFinder {
	return &cutFinder{threshold: threshold, lookahead: lookahead, next: 1}
}

func (f *cutFinder) sig(frame int) imageproc.Signature {
	return f.win[frame-f.first]
}

// last is the index of the newest frame seen, or -1 before the first push.
func (f *cutFinder) last() int {
	return f.first + len(f.win) - 1
}

// push adds the next frame's signature and decides every frame whose full
// lookahead is now available.
func (f *cutFinder) push(sig imageproc.Signature) {
	f.win = append(f.win, sig)
	for f.next+f.lookahead <= f.last() {
		f.decide(f.lookahead)
	}
	if drop := f.next - 1 - f.first; drop > 0 {
		f.win = append(f.win[:0], f.win[drop:]...)
		f.first += drop
	}
}

// flush decides the remaining frames at end of stream with whatever
// lookahead is left.
func (f *cutFinder) flush() {
	for f.next <= f.last() {
		f.decide(f.last() - f.next)
	}
}

func (f *cutFinder) decide(lookahead int) {
	c := f.next
	f.next++

	prev := f.sig(c - 1)
	if imageproc.Distance(prev, f.sig(c)) < f.threshold {
		return
	}
	for k := 1; k <= lookahead; k++ {
		if imageproc.Distance(prev, f.sig(c+k)) < f.threshold {
			f.flashes = append(f.flashes, c)
			f.flashLumas = append(f.flashLumas, imageproc.Luma(f.sig(c)))
			f.next = c + k + 1
			return
		}
	}
	f.cuts = append(f.cuts, c)
}
