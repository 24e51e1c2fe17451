package robots

import (
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// knownDirectives are the page-level directive names that may legitimately
// appear before a colon. Any other "name:" prefix in an X-Robots-Tag value is
// treated as a user agent scope.
var knownDirectives = map[string]bool{
	"all":               true,
	"noindex":           true,
	"nofollow":          true,
	"none":              true,
	"noarchive":         true,
	"nosnippet":         true,
	"notranslate":       true,
	"noimageindex":      true,
	"unavailable_after": true,
	"max-snippet":       true,
	"max-image-preview": true,
	"max-video-preview": true,
	"indexifembedded":   true,
}

// pageRules is the effective set of page-level restrictions for one agent.
type pageRules struct {
	noIndex  bool
	noFollow bool
}

// CanIndex reports whether the page may be indexed.
func (r pageRules) CanIndex() bool { return !r.noIndex }

// CanFollow reports whether links on the page may be followed.
func (r pageRules) CanFollow() bool { return !r.noFollow }

// apply folds a single directive into the rules.
func (r *pageRules) apply(directive string) {
	switch strings.ToLower(strings.TrimSpace(directive)) {
	case "noindex":
		r.noIndex = true
	case "nofollow":
		r.noFollow = true
	case "none":
		r.noIndex = true
		r.noFollow = true
	}
}

// productToken returns the lower-cased product token of a User-Agent string,
// e.g. "tagtree" for "tagtree/1.0 (+https://example.com)".
func productToken(userAgent string) string {
	token := strings.TrimSpace(userAgent)
	if i := strings.IndexAny(token, "/ "); i >= 0 {
		token = token[:i]
	}
	return strings.ToLower(token)
}

// collectPageRules gathers X-Robots-Tag header values and robots meta
// elements that apply to agent.
func collectPageRules(header http.Header, doc *html.Node, agent string) pageRules {
	var rules pageRules
	token := productToken(agent)

	for _, value := range header.Values("X-Robots-Tag") {
		applyHeaderValue(&rules, value, token)
	}

	if doc != nil {
		for _, meta := range metaDirectives(doc, token) {
			for _, d := range strings.Split(meta, ",") {
				rules.apply(d)
			}
		}
	}

	return rules
}

// applyHeaderValue parses one X-Robots-Tag value. A value may be scoped to a
// user agent ("otherbot: noindex"); the scope lasts until the end of the value.
func applyHeaderValue(rules *pageRules, value, token string) {
	scoped := true
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, rest, ok := strings.Cut(part, ":"); ok {
			lower := strings.ToLower(strings.TrimSpace(name))
			if !knownDirectives[lower] {
				scoped = lower == token || lower == "*"
				part = rest
			}
		}
		if scoped {
			rules.apply(part)
		}
	}
}

// metaDirectives returns the content of <meta name="robots"> elements and of
// meta elements named after the agent's product token.
func metaDirectives(doc *html.Node, token string) []string {
	var contents []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			name := strings.ToLower(strings.TrimSpace(getAttr(n, "name")))
			if name == "robots" || (token != "" && name == token) {
				contents = append(contents, getAttr(n, "content"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return contents
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
