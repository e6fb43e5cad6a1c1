package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outputs")
	s, err := NewStore(dir, time.Hour)
	require.NoError(t, err)

	name, err := s.Save([]byte("a,b\n"))
	require.NoError(t, err)
	assert.Regexp(t, resultName, name)

	path, err := s.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
	assert.Equal(t, 1, s.Count())
}

func TestStore_PathRejectsForeignNames(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, 0)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("x"), 0o600))

	for _, name := range []string{"notes.csv", "../notes.csv", "", "output_.csv"} {
		_, err := s.Path(name)
		assert.ErrorIs(t, err, ErrResultNotFound, name)
	}
}

func TestStore_SweepsExpiredResults(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, time.Minute)
	require.NoError(t, err)

	old, err := s.Save([]byte("old"))
	require.NoError(t, err)

	// Unrelated files are never touched.
	other := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))

	base := time.Now()
	s.now = func() time.Time { return base.Add(2 * time.Minute) }

	_, err = s.Path(old)
	assert.ErrorIs(t, err, ErrResultNotFound, "expired results are not served")

	fresh, err := s.Save([]byte("fresh"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, old))
	assert.True(t, os.IsNotExist(err), "expired result should be removed")
	_, err = os.Stat(other)
	assert.NoError(t, err)

	s.now = time.Now
	_, err = s.Path(fresh)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Count())
}

func TestStore_ZeroRetentionKeepsEverything(t *testing.T) {
	s, err := NewStore(t.TempDir(), 0)
	require.NoError(t, err)

	first, err := s.Save([]byte("1"))
	require.NoError(t, err)
	s.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }
	_, err = s.Save([]byte("2"))
	require.NoError(t, err)

	_, err = s.Path(first)
	assert.NoError(t, err)
	assert.Equal(t, 2, s.Count())
}
