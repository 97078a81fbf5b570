package vary

import (
	"embed"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/vary-sh/vary/pkg/cobrax/topics"
)

// Help topics compiled into the binary, shown via "vary help <topic>".
//
//go:embed topics
var topicDocs embed.FS

// installHelpTopics swaps cobra's help command for the topic-aware one.
func installHelpTopics(rootCmd *cobra.Command) {
	docs, err := fs.Sub(topicDocs, "topics")
	if err != nil {
		return
	}
	opts := topics.Options{
		Extensions: []string{".txt", ".md"},
		Renderer:   topics.NewGlamourRenderer(),
	}
	_ = topics.InitializeWithOptions(rootCmd, docs, opts)
}
