package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/vary-sh/vary/cmd/vary"
	"github.com/vary-sh/vary/internal/version"
)

func main() {
	rootCmd := vary.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "VARY",
		Section: "1",
		Source:  "vary " + version.Version,
		Manual:  "vary manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
