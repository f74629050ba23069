package pipeline

import "fmt"

// Stats tracks counters across a run.
type Stats struct {
	Total     int // Files discovered.
	Processed int
	Skipped   int // Output already present.
	Failed    int
	Scenes    int // Scene boundaries written, over all files.
}

// Err summarizes failures, or returns nil when every file succeeded.
func (s *Stats) Err() error {
	if s.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files failed", s.Failed, s.Processed+s.Failed)
}
