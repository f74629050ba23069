// Package cache remembers detection results in a local SQLite database so
// that re-running with different scene length limits skips decoding.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shear/internal/detect"
	"shear/internal/sceneio"
)

const schema = `
CREATE TABLE IF NOT EXISTS detections (
	path        TEXT    NOT NULL,
	options     TEXT    NOT NULL,
	size        INTEGER NOT NULL,
	mod_time    INTEGER NOT NULL,
	frame_count INTEGER NOT NULL,
	scenes      TEXT    NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (path, options)
);`

// Key identifies a detection: which file, in which state, with which options.
type Key struct {
	Path    string
	Size    int64
	ModTime time.Time
	Options string // detect.Options.Fingerprint()
}

// KeyFor stats path and builds its cache key.
func KeyFor(path string, opts detect.Options) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return Key{}, err
	}
	return Key{Path: abs, Size: fi.Size(), ModTime: fi.ModTime(), Options: opts.Fingerprint()}, nil
}

// Store is an open cache database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// One writer at a time; watch mode may otherwise race itself into SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init cache %s: %w", path, err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached result for key. A file whose size or modification
// time changed since it was cached is a miss.
func (s *Store) Get(ctx context.Context, key Key) (*detect.Result, bool, error) {
	var (
		size, modTime int64
		frames        int
		scenes        string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT size, mod_time, frame_count, scenes FROM detections WHERE path = ? AND options = ?`,
		key.Path, key.Options).Scan(&size, &modTime, &frames, &scenes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}
	if size != key.Size || modTime != key.ModTime.UnixNano() {
		return nil, false, nil
	}

	changes, err := sceneio.Read(strings.NewReader(scenes))
	if err != nil {
		return nil, false, fmt.Errorf("decode cached scenes: %w", err)
	}
	return &detect.Result{SceneChanges: changes, FrameCount: frames}, true, nil
}

// Put stores res under key, replacing any earlier entry for the same file
// and options.
func (s *Store) Put(ctx context.Context, key Key, res *detect.Result) error {
	var scenes strings.Builder
	if err := sceneio.Write(&scenes, res.SceneChanges); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO detections (path, options, size, mod_time, frame_count, scenes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path, options) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			frame_count = excluded.frame_count,
			scenes = excluded.scenes,
			created_at = excluded.created_at`,
		key.Path, key.Options, key.Size, key.ModTime.UnixNano(), res.FrameCount, scenes.String(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Prune deletes entries created before now minus age and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, age time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM detections WHERE created_at < ?`, time.Now().Add(-age).Unix())
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return res.RowsAffected()
}
