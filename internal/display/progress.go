package display

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressBar renders detection progress as a terminal bar. It satisfies
// detect.Observer.
type ProgressBar struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	total   int
	current int
}

// NewProgressBar draws a bar on w for total frames. A total of 0 or less
// shows a spinner instead, for inputs whose length is unknown.
func NewProgressBar(w io.Writer, description string, total int) *ProgressBar {
	n := total
	if n <= 0 {
		n = -1
	}
	bar := progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)
	return &ProgressBar{bar: bar, total: total}
}

// Progress moves the bar to frames. Counts past the expected total, which
// happen when the container under-reports its length, are held at 100%.
func (p *ProgressBar) Progress(frames int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		frames = min(frames, p.total)
	}
	p.current = frames
	_ = p.bar.Set(frames)
}

// Percent returns the completed share of the total, 0 to 100. It is 0 when
// the total is unknown.
func (p *ProgressBar) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total <= 0 {
		return 0
	}
	return float64(p.current) * 100 / float64(p.total)
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}
