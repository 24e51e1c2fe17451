// Package main provides the entry point for the tagtree CLI.
//
// tagtree crawls a tag page on a tagging website and follows its alias,
// parent and child links recursively, producing a tree of tags that is
// printed as a report and stored in a local SQLite database.
//
// Usage:
//
//	tagtree crawl https://archiveofourown.org/tags/Victorian
//	tagtree tags show Victorian
//
// See --help for all available options.
package main

func main() {
	Execute()
}
