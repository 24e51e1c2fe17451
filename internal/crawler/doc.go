// Package crawler builds tag trees by recursively following relation links.
//
// # Architecture
//
// The Engine visits a start page, extracts the tag it describes, and fans out
// over the page's alias, parent and child links. The three relation kinds are
// crawled concurrently with one another, and every link within a kind is
// crawled concurrently with its siblings. Each visit returns a fresh subtree;
// shared nodes of the underlying site graph are fetched again on every path
// that reaches them.
//
// # Failure policy
//
// Failures are asymmetric:
//   - A crawl policy denial (robots.AccessDeniedError) anywhere in the tree
//     aborts the whole crawl.
//   - Any other failure below the root prunes that branch. Missing pages
//     (404, 410) are logged as warnings, everything else as errors.
//   - Any failure of the root page fails the crawl.
//   - Cancellation stops new visits; the root returns what had completed
//     together with the context error.
//
// # Termination
//
// The engine performs no revisit detection. A cyclic relation graph recurses
// until the context is cancelled unless WithMaxDepth or WithCrawlTimeout is
// set.
//
// # Usage
//
//	engine := crawler.NewEngine(fetcher, policy, site.NewAO3(),
//		crawler.WithMaxDepth(3),
//		crawler.WithLogger(logger),
//	)
//	tree, err := engine.Crawl(ctx, startURL, true)
package crawler
