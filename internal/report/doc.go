// Package report renders crawl results.
//
// This package contains writers for different output formats:
//   - TextWriter: an indented tree for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: a summary with tables and a collapsible tree
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
package report
