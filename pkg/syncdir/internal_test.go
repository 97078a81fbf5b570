// Test Type: Unit Test
// Description: Tests for rsync itemize-changes parsing and argument shaping

package syncdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vary-sh/vary/pkg/logging"
	"github.com/vary-sh/vary/pkg/types"
)

func testSyncer() *rsyncSyncer {
	return &rsyncSyncer{logger: logging.GetLogger("syncdir")}
}

func TestParseItemized(t *testing.T) {
	out := []byte(
		">f+++++++++|docs/new.md\n" +
			">f.st......|main.go\n" +
			"cd+++++++++|docs/\n" +
			"*deleting  |old.go\n" +
			"*deleting  |legacy/\n" +
			".d..t......|./\n")

	changes := testSyncer().parseItemized(out)
	require.Len(t, changes, 3)

	// Copies first, then deletions, each sorted by path.
	assert.Equal(t, types.FileChange{Path: "docs/new.md", Kind: types.ChangeCreate}, changes[0])
	assert.Equal(t, types.FileChange{Path: "main.go", Kind: types.ChangeUpdate}, changes[1])
	assert.Equal(t, types.FileChange{Path: "old.go", Kind: types.ChangeDelete}, changes[2])
}

func TestParseItemizedSortsWithinGroups(t *testing.T) {
	out := []byte(
		">f.st......|zeta.go\n" +
			">f+++++++++|alpha.go\n" +
			"*deleting  |zulu.txt\n" +
			"*deleting  |adieu.txt\n")

	changes := testSyncer().parseItemized(out)
	require.Len(t, changes, 4)
	assert.Equal(t, "alpha.go", changes[0].Path)
	assert.Equal(t, "zeta.go", changes[1].Path)
	assert.Equal(t, "adieu.txt", changes[2].Path)
	assert.Equal(t, "zulu.txt", changes[3].Path)
}

func TestParseItemizedSkipsUnrecognizedLines(t *testing.T) {
	out := []byte("building file list ... done\n>f+++++++++|kept.go\n")

	changes := testSyncer().parseItemized(out)
	require.Len(t, changes, 1)
	assert.Equal(t, "kept.go", changes[0].Path)
}

func TestParseItemizedSpacedNames(t *testing.T) {
	out := []byte(">f+++++++++|docs/release notes.md\n")

	changes := testSyncer().parseItemized(out)
	require.Len(t, changes, 1)
	assert.Equal(t, "docs/release notes.md", changes[0].Path)
}

func TestClassifyItem(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		path     string
		wantKind types.ChangeKind
		wantOK   bool
	}{
		{
			name:     "new_file",
			code:     ">f+++++++++",
			path:     "a.go",
			wantKind: types.ChangeCreate,
			wantOK:   true,
		},
		{
			name:     "changed_file",
			code:     ">f.st......",
			path:     "a.go",
			wantKind: types.ChangeUpdate,
			wantOK:   true,
		},
		{
			name:     "new_symlink",
			code:     "cL+++++++++",
			path:     "link",
			wantKind: types.ChangeCreate,
			wantOK:   true,
		},
		{
			name:     "deleted_file",
			code:     "*deleting",
			path:     "gone.go",
			wantKind: types.ChangeDelete,
			wantOK:   true,
		},
		{
			name:   "deleted_directory_dropped",
			code:   "*deleting",
			path:   "gone/",
			wantOK: false,
		},
		{
			name:   "new_directory_dropped",
			code:   "cd+++++++++",
			path:   "docs/",
			wantOK: false,
		},
		{
			name:   "attribute_only_dropped",
			code:   ".f..t......",
			path:   "a.go",
			wantOK: false,
		},
		{
			name:   "directory_touch_dropped",
			code:   ".d..t......",
			path:   "./",
			wantOK: false,
		},
		{
			name:   "short_code_dropped",
			code:   ">",
			path:   "a.go",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, ok := classifyItem(tt.code, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, change.Kind)
				assert.Equal(t, tt.path, change.Path)
			}
		})
	}
}

func TestWithSlash(t *testing.T) {
	assert.Equal(t, "/src/app/", withSlash("/src/app"))
	assert.Equal(t, "/src/app/", withSlash("/src/app/"))
	assert.Equal(t, "/src/app/", withSlash("/src//app/."))
}
