package pipeline

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleSet holds files that changed recently. A file is ready once it has
// gone a full settle period without further writes, which keeps partially
// copied videos from being decoded.
type settleSet struct {
	settle  time.Duration
	touched map[string]time.Time
}

func newSettleSet(settle time.Duration) *settleSet {
	return &settleSet{settle: settle, touched: make(map[string]time.Time)}
}

// touch records a write to path at now.
func (s *settleSet) touch(path string, now time.Time) {
	s.touched[path] = now
}

func (s *settleSet) forget(path string) {
	delete(s.touched, path)
}

// ready removes and returns the settled paths, sorted.
func (s *settleSet) ready(now time.Time) []string {
	var out []string
	for path, at := range s.touched {
		if now.Sub(at) >= s.settle {
			out = append(out, path)
			delete(s.touched, path)
		}
	}
	sort.Strings(out)
	return out
}

func (s *settleSet) len() int {
	return len(s.touched)
}

// watch processes media files that appear or change under r.cfg.Input
// until ctx is canceled.
func (r *Runner) watch(ctx context.Context, stats *Stats) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addTree(w, r.cfg.Input); err != nil {
		return err
	}
	r.log.Info("watching for new videos", "dir", r.cfg.Input, "settle", r.cfg.Settle)

	pending := newSettleSet(r.cfg.Settle)
	tick := time.NewTicker(max(r.cfg.Settle/4, 100*time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			if n := pending.len(); n > 0 {
				r.log.Warn("stopped with files still settling", "count", n)
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			switch {
			case ev.Has(fsnotify.Create) && isDir(ev.Name):
				if err := addTree(w, ev.Name); err != nil {
					r.log.Warn("cannot watch new directory", "dir", ev.Name, "err", err)
				}
			case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
				pending.forget(ev.Name)
			case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
				if IsMedia(ev.Name) && !strings.HasPrefix(filepath.Base(ev.Name), ".") {
					pending.touch(ev.Name, time.Now())
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watch error", "err", err)

		case now := <-tick.C:
			for _, path := range pending.ready(now) {
				out := OutputPath(r.cfg.Input, r.cfg.Output, path, r.cfg.Compression)
				r.batchFile(ctx, path, out, false, stats)
			}
		}
	}
}

// addTree watches root and every non-hidden directory below it.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
