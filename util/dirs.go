package util

import (
	"os"
	"path/filepath"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// createdDirs remembers every directory EnsureDir has created in this process.
var createdDirs = cache.New(cache.NoExpiration, 0)

// EnsureDir creates dir (and its parents) on first use. Later calls for the
// same cleaned path are served from a process-wide cache without touching the
// filesystem.
func EnsureDir(dir string) error {
	clean := filepath.Clean(dir)
	if _, ok := createdDirs.Get(clean); ok {
		return nil
	}

	if err := os.MkdirAll(clean, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", clean)
	}
	createdDirs.SetDefault(clean, struct{}{})

	return nil
}

// KnownDirs returns the number of directories currently cached.
func KnownDirs() int {
	return createdDirs.ItemCount()
}

// ForgetDirs clears the directory cache.
func ForgetDirs() {
	createdDirs.Flush()
}
