// Package model defines the data structures produced by a tag crawl.
//
// The central type is CrawlResult, a tree mirroring the relation graph of a
// tag wiki around one entry. Each node owns a Tag descriptor and three
// collections of subtrees: aliases (synonyms of the tag), parents (broader
// tags) and children (narrower tags).
//
// Design decision: subtrees are never shared between parents. When the site
// graph reaches the same tag through two paths, the tree contains two
// independent copies. Identity is assigned later by the store package, which
// folds duplicates by name when it persists the tree.
package model
