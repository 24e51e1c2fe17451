// Package store persists crawled tag trees in SQLite.
//
// # Schema
//
//   - tags: one row per tag, unique by case-folded name
//   - tag_aliases: canonical tag to alias tag links
//   - tag_graph_links: parent tag to child tag links
//   - crawl_runs: one row per saved crawl
//
// The schema is versioned with PRAGMA user_version and migrated forward on
// Open.
//
// # Identity
//
// Crawled trees carry no identifiers. SaveTree folds nodes with the same
// name into a single row, so a tag reached through several paths of the tree
// is stored once and gains the union of its links.
//
// The driver is modernc.org/sqlite, a pure Go port, so the binary builds
// without cgo.
package store
