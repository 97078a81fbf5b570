// pkg/testutil/assertions.go
// PURPOSE: Filesystem and error assertions on top of testify

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/errors"
	"github.com/vary-sh/vary/pkg/types"
)

// AssertFileExists fails the test unless path exists and is a regular
// file.
func AssertFileExists(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	info, err := fsys.Stat(path)
	require.NoError(t, err, "expected file %s to exist", path)
	assert.False(t, info.IsDir(), "expected %s to be a file, found directory", path)
}

// AssertDirExists fails the test unless path exists and is a directory.
func AssertDirExists(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	info, err := fsys.Stat(path)
	require.NoError(t, err, "expected directory %s to exist", path)
	assert.True(t, info.IsDir(), "expected %s to be a directory", path)
}

// AssertNotExists fails the test if path exists.
func AssertNotExists(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	_, err := fsys.Lstat(path)
	assert.Error(t, err, "expected %s to be gone", path)
}

// AssertFileContent fails the test unless path holds exactly content.
func AssertFileContent(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err, "expected to read %s", path)
	assert.Equal(t, content, string(data), "unexpected content in %s", path)
}

// AssertErrorCode fails the test unless err carries the given code.
func AssertErrorCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, code),
		"expected error code %s, got %s (%v)", code, errors.GetErrorCode(err), err)
}
