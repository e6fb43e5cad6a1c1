package server

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ErrResultNotFound is returned for unknown or malformed result names.
var ErrResultNotFound = errors.New("server: result not found")

var resultName = regexp.MustCompile(`^output_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.csv$`)

// Store keeps result CSVs on disk for a limited time.
type Store struct {
	dir       string
	retention time.Duration
	now       func() time.Time
}

// NewStore creates dir if needed. A zero retention keeps files forever.
func NewStore(dir string, retention time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("server: creating output dir %s: %w", dir, err)
	}
	return &Store{dir: dir, retention: retention, now: time.Now}, nil
}

// Save writes data under a fresh random name and returns that name.
// Expired results are removed first.
func (s *Store) Save(data []byte) (string, error) {
	s.sweep()

	name := fmt.Sprintf("output_%s.csv", uuid.NewString())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o640); err != nil {
		return "", fmt.Errorf("server: writing result: %w", err)
	}
	return name, nil
}

// Path resolves a stored result name to its file. Names that the store
// could not have produced are rejected.
func (s *Store) Path(name string) (string, error) {
	if !resultName.MatchString(name) {
		return "", ErrResultNotFound
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrResultNotFound
	}
	if s.expired(info) {
		return "", ErrResultNotFound
	}
	return path, nil
}

// Count returns the number of stored results.
func (s *Store) Count() int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if resultName.MatchString(e.Name()) {
			n++
		}
	}
	return n
}

func (s *Store) expired(info fs.FileInfo) bool {
	return s.retention > 0 && s.now().Sub(info.ModTime()) > s.retention
}

// sweep deletes expired results. Failures are logged and ignored.
func (s *Store) sweep() {
	if s.retention <= 0 {
		return
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		slog.Warn("listing results failed", "dir", s.dir, "error", err)
		return
	}
	for _, e := range entries {
		if !resultName.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || !s.expired(info) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("removing expired result failed", "name", e.Name(), "error", err)
			continue
		}
		slog.Debug("expired result removed", "name", e.Name())
	}
}
