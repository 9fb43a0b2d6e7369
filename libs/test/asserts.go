package test

import (
	"io/fs"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Windows does not support the POSIX permission bits, so only the write
// permissions are reported.
func expectedPerm(posix, windows fs.FileMode) fs.FileMode {
	if runtime.GOOS == "windows" {
		return windows
	}
	return posix
}

// AssertPrivateDir verifies the directory is only accessible to its owner.
func AssertPrivateDir(t *testing.T, dirPath string) {
	t.Helper()

	stats, err := os.Stat(dirPath)
	require.NoError(t, err)
	assert.True(t, stats.IsDir(), "%s is not a directory", dirPath)
	assert.Equal(t, expectedPerm(0o700, 0o777), stats.Mode().Perm())
}

// AssertPrivateFile verifies the file is only accessible to its owner.
func AssertPrivateFile(t *testing.T, filePath string) {
	t.Helper()

	stats, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.False(t, stats.IsDir(), "%s is a directory", filePath)
	assert.Equal(t, expectedPerm(0o600, 0o666), stats.Mode().Perm())
}

// AssertFileDoesNotContain verifies none of the secrets appear in the file
// content.
func AssertFileDoesNotContain(t *testing.T, filePath string, secrets ...string) {
	t.Helper()

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	for _, secret := range secrets {
		assert.False(t, strings.Contains(string(content), secret), "the file %s leaks a secret", filePath)
	}
}
