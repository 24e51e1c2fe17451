package site

import (
	"iter"
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/nao1215/tagtree/internal/model"
	"golang.org/x/net/html"
)

// AO3Name is the registry name of the Archive of Our Own extractor.
const AO3Name = "ao3"

// CanonicalMarker is the name of the parent attached to canonical tags.
const CanonicalMarker = "Canonical"

// ao3Hosts are the hosts detected as Archive of Our Own.
var ao3Hosts = []string{"archiveofourown.org", "www.archiveofourown.org", "ao3.org"}

var (
	// categoryPattern captures the category from "This tag belongs to the
	// Additional Tags Category."
	categoryPattern = regexp.MustCompile(`belongs to the (.+?) Category`)

	// canonicalPattern matches the sentence AO3 uses for canonical tags.
	canonicalPattern = regexp.MustCompile(`(?i)it's a (common|canonical) tag`)
)

// classListbox builds an XPath step matching the links of the listbox div
// with the given class inside the tag profile. Only the listbox's own list
// items match, so tags nested below them in a tree are skipped.
func classListbox(class string) string {
	return `//*[@id="main"]//div[contains(concat(' ', normalize-space(@class), ' '), ' ` +
		class + ` ') and contains(concat(' ', normalize-space(@class), ' '), ' listbox ')]/ul/li/a`
}

// AO3 extracts tags from Archive of Our Own tag pages.
//
// Design decision: expressions are compiled per extractor instance rather
// than held in package globals. Evaluation clones the compiled query, so one
// instance serves every goroutine of a crawl.
type AO3 struct {
	// name lists the tag name expressions in order of preference. The second
	// one is the positional layout of older pages.
	name     []*xpath.Expr
	profile  *xpath.Expr
	aliases  *xpath.Expr
	parents  *xpath.Expr
	metas    *xpath.Expr
	children *xpath.Expr
}

// NewAO3 creates an Archive of Our Own extractor.
func NewAO3() *AO3 {
	return &AO3{
		name: []*xpath.Expr{
			xpath.MustCompile(`//*[@id="main"]//div[contains(concat(' ', normalize-space(@class), ' '), ' home ')]/h2`),
			xpath.MustCompile(`//*[@id="main"]/div[2]/div[1]/h2`),
		},
		profile:  xpath.MustCompile(`//*[@id="main"]//div[contains(concat(' ', normalize-space(@class), ' '), ' home ')]/p`),
		aliases:  xpath.MustCompile(classListbox("synonym")),
		parents:  xpath.MustCompile(classListbox("parent")),
		metas:    xpath.MustCompile(classListbox("meta")),
		children: xpath.MustCompile(classListbox("sub")),
	}
}

// Name implements Extractor.
func (a *AO3) Name() string { return AO3Name }

// Descriptor implements Extractor. AO3 tags carry only a name.
func (a *AO3) Descriptor(doc *html.Node) (model.Tag, error) {
	for _, expr := range a.name {
		if n := htmlquery.QuerySelector(doc, expr); n != nil {
			if name := cleanText(htmlquery.InnerText(n)); name != "" {
				return model.Tag{Name: name}, nil
			}
		}
	}
	return model.Tag{}, ErrMissingName
}

// AliasLinks implements Extractor.
func (a *AO3) AliasLinks(doc *html.Node) iter.Seq[*url.URL] {
	return hrefSeq(selectHrefs(doc, a.aliases))
}

// ParentLinks implements Extractor. Parent tags and meta tags are both
// treated as parents.
func (a *AO3) ParentLinks(doc *html.Node) iter.Seq[*url.URL] {
	hrefs := selectHrefs(doc, a.parents)
	hrefs = append(hrefs, selectHrefs(doc, a.metas)...)
	return hrefSeq(hrefs)
}

// ChildLinks implements Extractor.
func (a *AO3) ChildLinks(doc *html.Node) iter.Seq[*url.URL] {
	return hrefSeq(selectHrefs(doc, a.children))
}

// ParentMarkers implements MarkerSource. A tag's category and, for canonical
// tags, the canonical marker are reported as parents.
func (a *AO3) ParentMarkers(doc *html.Node) []model.Tag {
	var text strings.Builder
	for _, p := range htmlquery.QuerySelectorAll(doc, a.profile) {
		text.WriteString(cleanText(htmlquery.InnerText(p)))
		text.WriteString(" ")
	}
	profile := text.String()

	var markers []model.Tag
	if m := categoryPattern.FindStringSubmatch(profile); m != nil {
		category := strings.TrimSuffix(strings.TrimSpace(m[1]), " Tags")
		markers = append(markers, model.Tag{Name: category})
	}
	if canonicalPattern.MatchString(profile) {
		markers = append(markers, model.Tag{Name: CanonicalMarker})
	}
	return markers
}

// selectHrefs returns the href attribute of every node matching expr.
func selectHrefs(doc *html.Node, expr *xpath.Expr) []string {
	nodes := htmlquery.QuerySelectorAll(doc, expr)
	hrefs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		hrefs = append(hrefs, htmlquery.SelectAttr(n, "href"))
	}
	return hrefs
}
