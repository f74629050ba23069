package detect

// ProgressInterval is how many frames pass between progress reports.
const ProgressInterval = 100

// Observer receives the number of frames analysed so far. Reports arrive
// every ProgressInterval frames and once more when detection finishes.
type Observer interface {
	Progress(frames int)
}

// checkpoint throttles reports to an Observer. A nil observer is allowed.
type checkpoint struct {
	obs  Observer
	last int
}

func newCheckpoint(obs Observer) *checkpoint {
	return &checkpoint{obs: obs}
}

// advance reports frames if a multiple of ProgressInterval was crossed
// since the last report.
func (c *checkpoint) advance(frames int) {
	if c.obs == nil || frames/ProgressInterval <= c.last/ProgressInterval {
		return
	}
	c.last = frames
	c.obs.Progress(frames)
}

// finish sends the final count.
func (c *checkpoint) finish(frames int) {
	if c.obs == nil || frames == c.last {
		return
	}
	c.last = frames
	c.obs.Progress(frames)
}
