// Package display formats values for log output and renders the progress bar.
package display

import (
	"fmt"
	"math"
	"time"

	"shear/internal/scene"
)

// FormatDuration rounds d for display: "850ms", "12.4s", "3m07s", "1h02m03s".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dh%02dm%02ds", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
}

// FormatFrames shows a frame count with its running time at rate, e.g.
// "240 (10.0s)". The time is omitted when the rate is unknown.
func FormatFrames(frames int, rate scene.Rate) string {
	if !rate.Valid() {
		return fmt.Sprintf("%d", frames)
	}
	secs := float64(frames) / rate.Float()
	return fmt.Sprintf("%d (%s)", frames, FormatDuration(time.Duration(math.Round(secs*1000))*time.Millisecond))
}
