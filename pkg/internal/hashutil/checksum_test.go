// Test Type: Unit Test
// Description: Tests for hashutil - checksum calculation over an injected filesystem

package hashutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/internal/hashutil"
	"github.com/vary-sh/vary/pkg/testutil"
)

func TestFileChecksum(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/work", 0755))
	require.NoError(t, fs.WriteFile("/work/probe", []byte("probe\n"), 0644))

	sum, err := hashutil.FileChecksum(fs, "/work/probe")
	require.NoError(t, err)

	assert.Contains(t, sum, "sha256:")
	assert.Len(t, sum, 71) // "sha256:" + 64 hex chars

	again, err := hashutil.FileChecksum(fs, "/work/probe")
	require.NoError(t, err)
	assert.Equal(t, sum, again)
}

func TestFileChecksumDiffersByContent(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/work", 0755))
	require.NoError(t, fs.WriteFile("/work/a", []byte("one"), 0644))
	require.NoError(t, fs.WriteFile("/work/b", []byte("two"), 0644))

	sumA, err := hashutil.FileChecksum(fs, "/work/a")
	require.NoError(t, err)
	sumB, err := hashutil.FileChecksum(fs, "/work/b")
	require.NoError(t, err)

	assert.NotEqual(t, sumA, sumB)
}

func TestFileChecksumEmptyFile(t *testing.T) {
	fs := testutil.NewMemoryFS()
	require.NoError(t, fs.MkdirAll("/work", 0755))
	require.NoError(t, fs.WriteFile("/work/empty", nil, 0644))

	sum, err := hashutil.FileChecksum(fs, "/work/empty")
	require.NoError(t, err)

	// SHA256 of empty input is a fixed digest.
	assert.Equal(t, "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)
}

func TestFileChecksumMissingFile(t *testing.T) {
	fs := testutil.NewMemoryFS()

	_, err := hashutil.FileChecksum(fs, "/no/such/file")
	assert.Error(t, err)
}
