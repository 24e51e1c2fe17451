package site

import (
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/nao1215/tagtree/internal/model"
	"golang.org/x/net/html"
)

// Selectors describes a site's tag page layout with CSS selectors.
// Name is required. Empty selectors are skipped.
type Selectors struct {
	// Name selects the element whose text is the tag name.
	Name string
	// Shorthand selects the element whose text is the tag's short form.
	Shorthand string
	// Colour selects the element carrying the tag colour.
	Colour string
	// ColourAttr names the attribute holding the colour. Empty means the
	// element text.
	ColourAttr string
	// Hidden marks the tag hidden when it matches any element.
	Hidden string
	// Aliases selects alias anchors.
	Aliases string
	// Parents selects parent anchors.
	Parents string
	// Children selects child anchors.
	Children string
}

// Selector is an Extractor driven by CSS selectors.
type Selector struct {
	name      string
	tagName   goquery.Matcher
	shorthand goquery.Matcher
	colour    goquery.Matcher
	colourAt  string
	hidden    goquery.Matcher
	aliases   goquery.Matcher
	parents   goquery.Matcher
	children  goquery.Matcher
}

// NewSelector compiles sel into an extractor registered as name.
func NewSelector(name string, sel Selectors) (*Selector, error) {
	if strings.TrimSpace(sel.Name) == "" {
		return nil, fmt.Errorf("%w: name selector is required", ErrInvalidSelector)
	}

	s := &Selector{name: name, colourAt: sel.ColourAttr}
	fields := []struct {
		label string
		src   string
		dst   *goquery.Matcher
	}{
		{"name", sel.Name, &s.tagName},
		{"shorthand", sel.Shorthand, &s.shorthand},
		{"colour", sel.Colour, &s.colour},
		{"hidden", sel.Hidden, &s.hidden},
		{"aliases", sel.Aliases, &s.aliases},
		{"parents", sel.Parents, &s.parents},
		{"children", sel.Children, &s.children},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.src) == "" {
			continue
		}
		m, err := cascadia.Compile(f.src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %w", ErrInvalidSelector, f.label, f.src, err)
		}
		*f.dst = m
	}
	return s, nil
}

// Name implements Extractor.
func (s *Selector) Name() string { return s.name }

// Descriptor implements Extractor. An unparsable colour is left unset.
func (s *Selector) Descriptor(doc *html.Node) (model.Tag, error) {
	d := goquery.NewDocumentFromNode(doc)

	tag := model.Tag{Name: cleanText(d.FindMatcher(s.tagName).First().Text())}
	if tag.Name == "" {
		return model.Tag{}, ErrMissingName
	}

	if s.shorthand != nil {
		tag.Shorthand = cleanText(d.FindMatcher(s.shorthand).First().Text())
	}

	if s.colour != nil {
		el := d.FindMatcher(s.colour).First()
		raw := el.Text()
		if s.colourAt != "" {
			raw, _ = el.Attr(s.colourAt)
		}
		if c, err := model.ParseColour(strings.TrimSpace(raw)); err == nil {
			tag.Colour = &c
		}
	}

	if s.hidden != nil {
		tag.Hidden = d.FindMatcher(s.hidden).Length() > 0
	}

	return tag, nil
}

// AliasLinks implements Extractor.
func (s *Selector) AliasLinks(doc *html.Node) iter.Seq[*url.URL] {
	return s.links(doc, s.aliases)
}

// ParentLinks implements Extractor.
func (s *Selector) ParentLinks(doc *html.Node) iter.Seq[*url.URL] {
	return s.links(doc, s.parents)
}

// ChildLinks implements Extractor.
func (s *Selector) ChildLinks(doc *html.Node) iter.Seq[*url.URL] {
	return s.links(doc, s.children)
}

func (s *Selector) links(doc *html.Node, m goquery.Matcher) iter.Seq[*url.URL] {
	if m == nil {
		return hrefSeq(nil)
	}
	var hrefs []string
	goquery.NewDocumentFromNode(doc).FindMatcher(m).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefSeq(hrefs)
}
