package config

import (
	"fmt"
	"maps"
	"net"
	"strings"

	"github.com/nao1215/tagtree/internal/site"
)

// SelectorConfig holds the CSS selectors of a config-defined site.
type SelectorConfig struct {
	Name       string `yaml:"name"`
	Shorthand  string `yaml:"shorthand,omitempty"`
	Colour     string `yaml:"colour,omitempty"`
	ColourAttr string `yaml:"colourAttr,omitempty"`
	Hidden     string `yaml:"hidden,omitempty"`
	Aliases    string `yaml:"aliases,omitempty"`
	Parents    string `yaml:"parents,omitempty"`
	Children   string `yaml:"children,omitempty"`
}

// Selectors converts the configuration into extractor selectors.
func (s SelectorConfig) Selectors() site.Selectors {
	return site.Selectors{
		Name:       s.Name,
		Shorthand:  s.Shorthand,
		Colour:     s.Colour,
		ColourAttr: s.ColourAttr,
		Hidden:     s.Hidden,
		Aliases:    s.Aliases,
		Parents:    s.Parents,
		Children:   s.Children,
	}
}

// SiteConfig holds settings for a single host.
type SiteConfig struct {
	// Extractor names the link extractor for this host ("ao3" or the name of
	// a selectors entry).
	Extractor string `yaml:"extractor,omitempty"`

	// Selectors defines a CSS selector extractor for this host. The
	// extractor is registered under the host name unless Extractor is set.
	Selectors *SelectorConfig `yaml:"selectors,omitempty"`

	// Cookie is sent with every request to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxDepth overrides the crawl depth limit. Zero keeps the global value.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// UserAgent overrides the global user agent.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File is the structure of the configuration file.
type File struct {
	// Defaults applies to every host.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps host names to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// GetSiteConfig returns the merged settings for host. Non-zero site fields
// override the defaults and header maps are merged. Host matching ignores
// case and falls back to the host without its port.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if cf.Defaults.Headers != nil {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	sc, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if sc.Extractor != "" {
		result.Extractor = sc.Extractor
	}
	if sc.Selectors != nil {
		result.Selectors = sc.Selectors
	}
	if sc.Cookie != "" {
		result.Cookie = sc.Cookie
	}
	if sc.MaxDepth != 0 {
		result.MaxDepth = sc.MaxDepth
	}
	if sc.UserAgent != "" {
		result.UserAgent = sc.UserAgent
	}
	if len(sc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(sc.Headers))
		}
		maps.Copy(result.Headers, sc.Headers)
	}

	return result
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	host = strings.ToLower(host)
	candidates := []string{host}
	if h, _, err := net.SplitHostPort(host); err == nil {
		candidates = append(candidates, h)
	}

	for _, c := range candidates {
		for key, sc := range cf.Sites {
			if strings.ToLower(key) == c {
				return sc, true
			}
		}
	}
	return SiteConfig{}, false
}

// Register adds every selectors entry of the file to the registry. An entry
// is registered under its Extractor name, or its host when none is given,
// and is detected for its host.
func (cf *File) Register(reg *site.Registry) error {
	for host, sc := range cf.Sites {
		if sc.Selectors == nil {
			continue
		}
		name := sc.Extractor
		if name == "" {
			name = strings.ToLower(host)
		}
		if err := reg.RegisterSelectors(name, sc.Selectors.Selectors(), host); err != nil {
			return fmt.Errorf("%w: site %q: %w", ErrInvalidSiteConfig, host, err)
		}
	}
	return nil
}
