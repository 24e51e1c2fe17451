package site

import (
	"errors"
	"iter"
	"net/url"
	"strings"

	"github.com/nao1215/tagtree/internal/model"
	"golang.org/x/net/html"
)

// Extraction errors.
var (
	// ErrMissingName is returned when a page has no recognizable tag name.
	ErrMissingName = errors.New("tag name not found on page")

	// ErrUnknownExtractor is returned when no extractor is registered under
	// the requested name.
	ErrUnknownExtractor = errors.New("unknown extractor")

	// ErrInvalidSelector is returned when a configured selector does not
	// compile.
	ErrInvalidSelector = errors.New("invalid selector")
)

// Extractor reads the tag descriptor and the outgoing relation links of a
// tag page. Implementations must be safe for concurrent use.
type Extractor interface {
	// Name identifies the extractor in configuration and logs.
	Name() string

	// Descriptor extracts the tag the page describes.
	Descriptor(doc *html.Node) (model.Tag, error)

	// AliasLinks yields links to tags with the same meaning.
	AliasLinks(doc *html.Node) iter.Seq[*url.URL]

	// ParentLinks yields links to more general tags.
	ParentLinks(doc *html.Node) iter.Seq[*url.URL]

	// ChildLinks yields links to more specific tags.
	ChildLinks(doc *html.Node) iter.Seq[*url.URL]
}

// MarkerSource is implemented by extractors that derive parent tags from the
// page text instead of from links, such as a tag's category. Marker tags are
// attached to the tree as leaves without being fetched.
type MarkerSource interface {
	ParentMarkers(doc *html.Node) []model.Tag
}

// Links returns the links of a given relation kind.
func Links(e Extractor, rel model.Relation, doc *html.Node) iter.Seq[*url.URL] {
	switch rel {
	case model.RelationAlias:
		return e.AliasLinks(doc)
	case model.RelationParent:
		return e.ParentLinks(doc)
	case model.RelationChild:
		return e.ChildLinks(doc)
	default:
		return func(func(*url.URL) bool) {}
	}
}

// hrefSeq converts raw href values into URLs, skipping values that cannot
// point at another tag page.
func hrefSeq(hrefs []string) iter.Seq[*url.URL] {
	return func(yield func(*url.URL) bool) {
		for _, href := range hrefs {
			u, ok := parseHref(href)
			if !ok {
				continue
			}
			if !yield(u) {
				return
			}
		}
	}
}

// parseHref parses an href attribute. Empty values, fragment-only links and
// non-HTTP schemes are rejected.
func parseHref(href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return u, true
	default:
		return nil, false
	}
}

// cleanText collapses runs of whitespace in s.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
