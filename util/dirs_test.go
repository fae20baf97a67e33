package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirCreatesOnce(t *testing.T) {
	ForgetDirs()
	dir := filepath.Join(t.TempDir(), "results", "StringVsBuilder")

	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, 1, KnownDirs())

	// A cached directory is not recreated even if it vanished in between.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, EnsureDir(dir+string(os.PathSeparator)))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	ForgetDirs()
	require.NoError(t, EnsureDir(dir))
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestEnsureDirReportsFailure(t *testing.T) {
	ForgetDirs()
	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := EnsureDir(filepath.Join(file, "child"))
	assert.Error(t, err)
	assert.Equal(t, 0, KnownDirs())
}
