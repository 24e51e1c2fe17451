// Package site knows how to read tag pages of specific tag-wiki sites.
//
// An Extractor turns a parsed page into the tag it describes plus three
// sequences of outgoing links: aliases, parents and children. Links are
// returned as found on the page, possibly relative; resolving them is the
// crawler's job.
//
// Two extractors ship with the package. The "ao3" extractor reads Archive of
// Our Own tag pages using XPath expressions (github.com/antchfx/htmlquery).
// The selector extractor is configured with CSS selectors
// (github.com/PuerkitoBio/goquery) so new sites can be described in the
// configuration file without code changes.
package site
