package persistance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestXDGPersistanceRepo(t *testing.T) {
	t.Run("returns nothing before anything is tracked", func(t *testing.T) {
		repo := NewXDGPersistanceRepo(t.TempDir())
		tracked, err := repo.GetTracked()
		assert.NoError(t, err)
		assert.Empty(t, tracked)
	})

	t.Run("keeps the most recent request first", func(t *testing.T) {
		dir := t.TempDir()
		repo := NewXDGPersistanceRepo(dir)
		clock := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

		assert.NoError(t, repo.AddTracked("NixOS/nixpkgs", 1, "first"))
		assert.NoError(t, repo.AddTracked("NixOS/nixpkgs", 2, "second"))
		assert.NoError(t, repo.AddTracked("NixOS/nixpkgs", 1, "first again"))

		tracked, err := NewXDGPersistanceRepo(dir).GetTracked()
		assert.NoError(t, err)
		if assert.Len(t, tracked, 2) {
			assert.Equal(t, "first again", tracked[0].Title)
			assert.Equal(t, 2, tracked[1].Number)
			assert.True(t, tracked[0].LastTracked.After(tracked[1].LastTracked))
		}
	})

	t.Run("bounds the history", func(t *testing.T) {
		repo := NewXDGPersistanceRepo(t.TempDir())
		for i := 1; i <= maxTracked+5; i++ {
			assert.NoError(t, repo.AddTracked("o/r", i, ""))
		}

		tracked, err := repo.GetTracked()
		assert.NoError(t, err)
		assert.Len(t, tracked, maxTracked)
		assert.Equal(t, maxTracked+5, tracked[0].Number)
	})

	t.Run("fails on a corrupt state file", func(t *testing.T) {
		dir := t.TempDir()
		assert.NoError(t, os.WriteFile(filepath.Join(dir, "state"), []byte("{"), 0644))

		_, err := NewXDGPersistanceRepo(dir).GetTracked()
		assert.Error(t, err)
	})
}
