package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for tagtree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tagtree",
		Short: "Crawl tag relationships on tagging websites",
		Long: `tagtree crawls a tag page and recursively follows its alias, parent and
child links, building a tree of tags.

robots.txt and page-level robots directives are honoured unless
--ignore-robots is given. Crawled trees are stored in a local database
that the tags command can inspect and edit.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db", "",
		"Directory of the tag database (default: XDG data directory)")
	cmd.PersistentFlags().String("log-file", "",
		"Also write JSON logs to this file (rotated)")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewTagsCmd())
	cmd.AddCommand(NewRunsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
