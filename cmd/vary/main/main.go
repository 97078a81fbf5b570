package main

import (
	"fmt"
	"os"

	"github.com/vary-sh/vary/cmd/vary"
	"github.com/vary-sh/vary/pkg/config"
	"github.com/vary-sh/vary/pkg/style"
)

func main() {
	rootCmd := vary.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		renderer := style.NewRenderer(config.ModeAuto)
		fmt.Fprintln(os.Stderr, renderer.RenderError(err))
		os.Exit(1)
	}
}
