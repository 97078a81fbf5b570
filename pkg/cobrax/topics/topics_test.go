package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

func TestTopicManagerScanTopics(t *testing.T) {
	fsys := topicFS(map[string]string{
		"dry-run.txt":     "Information about dry-run mode",
		"architecture.md": "# Architecture\n\nSystem architecture details",
		"config.txxt":     "Configuration Guide\n==================",
		"ignore.json":     "This should be ignored",
	})

	t.Run("default_extensions", func(t *testing.T) {
		tm := New(fsys)
		require.NoError(t, tm.scanTopics())

		tests := []struct {
			name     string
			expected bool
			content  string
		}{
			{"dry-run", true, "Information about dry-run mode"},
			{"architecture", true, "# Architecture\n\nSystem architecture details"},
			{"config", false, ""}, // .txxt not in defaults
			{"ignore", false, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, exists := tm.GetTopic(tt.name)
				assert.Equal(t, tt.expected, exists)
				if exists {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
	})

	t.Run("custom_extensions", func(t *testing.T) {
		tm := NewWithOptions(fsys, Options{
			Extensions: []string{".txt", ".md", ".txxt"},
		})
		require.NoError(t, tm.scanTopics())

		topic, exists := tm.GetTopic("config")
		require.True(t, exists)
		assert.Equal(t, "Configuration Guide\n==================", topic.Content)
	})
}

func TestTopicManagerGetTopic(t *testing.T) {
	fsys := topicFS(map[string]string{
		"option-dry-run.txt": "Dry run help",
		"option-verbose.txt": "Verbose help",
		"architecture.txt":   "Architecture help",
	})

	tm := New(fsys)
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		input    string
		expected string
		exists   bool
	}{
		// Direct topic name
		{"architecture", "architecture", true},
		// Option topics with prefix
		{"option-dry-run", "option-dry-run", true},
		// Flag-style lookups should find option- prefixed files
		{"dry-run", "option-dry-run", true},
		{"--dry-run", "option-dry-run", true},
		{"-dry-run", "option-dry-run", true},
		{"verbose", "option-verbose", true},
		{"-v", "", false}, // Single letter flags don't match
		{"--verbose", "option-verbose", true},
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, exists := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, exists)
			if exists {
				assert.Equal(t, tt.expected, topic.Name)
			}
		})
	}
}

func TestTopicManagerListTopics(t *testing.T) {
	names := []string{"strategies", "workspace", "dry-run", "config"}
	files := map[string]string{}
	for _, name := range names {
		files[name+".txt"] = "Help for " + name
	}

	tm := New(topicFS(files))
	require.NoError(t, tm.scanTopics())

	list := tm.ListTopics()
	assert.Len(t, list, len(names))
	for _, expected := range names {
		assert.Contains(t, list, expected)
	}
}

func TestTopicManagerSubdirectories(t *testing.T) {
	fsys := topicFS(map[string]string{
		"advanced/plugins.txt": "Plugin help",
	})

	tm := New(fsys)
	require.NoError(t, tm.scanTopics())

	// Subdirectory files are flattened to their base name.
	topic, exists := tm.GetTopic("plugins")
	require.True(t, exists)
	assert.Equal(t, "Plugin help", topic.Content)
}

func TestTopicManagerEmptyFS(t *testing.T) {
	tm := New(fstest.MapFS{})
	require.NoError(t, tm.scanTopics())
	assert.Empty(t, tm.ListTopics())
}

func TestInitialize(t *testing.T) {
	fsys := topicFS(map[string]string{"test-topic.txt": "Test topic content"})

	rootCmd := &cobra.Command{
		Use:   "testapp",
		Short: "Test application",
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Sync something",
		Run:   func(cmd *cobra.Command, args []string) {},
	})

	require.NoError(t, Initialize(rootCmd, fsys))

	helpCmd, _, err := rootCmd.Find([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help", helpCmd.Name())
	assert.Equal(t, "help [command or topic]", helpCmd.Use)
}

func TestHelpCommandRendersTopic(t *testing.T) {
	fsys := topicFS(map[string]string{
		"dry-run.txt": "DRY RUN MODE\nThis is a test of dry run help.",
	})

	rootCmd := &cobra.Command{
		Use:   "testapp",
		Short: "Test application",
	}
	require.NoError(t, Initialize(rootCmd, fsys))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"help", "dry-run"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, buf.String(), "DRY RUN MODE")
}

func TestHelpCommandListsTopics(t *testing.T) {
	fsys := topicFS(map[string]string{
		"strategies.txt":    "About merge strategies",
		"option-branch.txt": "About --branch",
	})

	rootCmd := &cobra.Command{Use: "testapp"}
	require.NoError(t, Initialize(rootCmd, fsys))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"help", "topics"})
	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "General topics:")
	assert.Contains(t, out, "strategies")
	assert.Contains(t, out, "Option topics:")
	assert.Contains(t, out, "--branch")
	assert.False(t, strings.Contains(out, "option-branch"), "option prefix should be stripped for display")
}

func TestHelpCommandFallsBackToCommands(t *testing.T) {
	fsys := topicFS(map[string]string{"unrelated.txt": "x"})

	ran := false
	rootCmd := &cobra.Command{Use: "testapp"}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Sync something",
		Run:   func(cmd *cobra.Command, args []string) { ran = true },
	})
	require.NoError(t, Initialize(rootCmd, fsys))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"help", "sync"})
	require.NoError(t, rootCmd.Execute())

	assert.False(t, ran, "help must describe the command, not run it")
	assert.Contains(t, buf.String(), "Sync something")
}
