// Package robots enforces crawl policy for the tag crawler.
//
// Two layers decide whether a page may be crawled:
//
//   - Site level: the robots.txt file at the target's authority must allow
//     the configured user agent to fetch the target path. This is checked
//     before the page is requested.
//   - Page level: directives carried by the X-Robots-Tag response header and
//     by robots meta elements in the document must allow the agent to both
//     index the page and follow its links. This is checked after the page has
//     been fetched.
//
// A denial on either layer is reported as an *AccessDeniedError. It is never a
// transport error, so callers that prune broken links must let it propagate.
//
// robots.txt evaluation is delegated to github.com/temoto/robotstxt. Parsed
// files are cached per authority for the lifetime of a Policy, and concurrent
// lookups for the same authority share a single request.
package robots
