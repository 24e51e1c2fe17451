package robots

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// maxRobotsSize caps the number of robots.txt bytes read per authority.
// Content past this limit is ignored, as major crawlers do.
const maxRobotsSize = 512 * 1024

// robotsTimeout bounds a robots.txt download. The download is shared by every
// caller waiting on the same authority, so it does not follow any single
// caller's context.
const robotsTimeout = 30 * time.Second

// Guard decides whether a page may be crawled.
//
// CheckSite runs before a page is requested, CheckPage after it has been
// fetched and parsed. Both return nil when access is allowed, an
// *AccessDeniedError when the origin's policy denies it, and any other error
// when the policy itself could not be evaluated.
type Guard interface {
	CheckSite(ctx context.Context, target *url.URL) error
	CheckPage(target *url.URL, header http.Header, doc *html.Node) error
}

// Policy is the default Guard. It is safe for concurrent use.
type Policy struct {
	// client fetches robots.txt files.
	client *http.Client

	// userAgent is sent with robots.txt requests and matched against
	// User-agent groups and agent-scoped page directives.
	userAgent string

	// logger receives debug output about loaded robots files.
	logger *slog.Logger

	// onCrawlDelay is invoked once per authority whose robots.txt declares a
	// Crawl-delay for our agent.
	onCrawlDelay func(authority *url.URL, delay time.Duration)

	// mu guards cache.
	mu    sync.RWMutex
	cache map[string]*robotstxt.RobotsData

	// flight collapses concurrent robots.txt requests for one authority.
	//
	// Design decision: sibling links on a tag page almost always share an
	// authority, so a crawl starts dozens of CheckSite calls at once for a
	// file that has not been cached yet. singleflight makes them wait on a
	// single request instead of racing to fetch the same file.
	flight singleflight.Group
}

// Option configures a Policy.
type Option func(*Policy)

// WithHTTPClient sets the client used to download robots.txt.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Policy) {
		if client != nil {
			p.client = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCrawlDelayFunc registers fn to be told about Crawl-delay values.
// The fetch throttle uses this to space out requests to an authority.
func WithCrawlDelayFunc(fn func(authority *url.URL, delay time.Duration)) Option {
	return func(p *Policy) {
		p.onCrawlDelay = fn
	}
}

// NewPolicy creates a Policy evaluating rules for userAgent.
func NewPolicy(userAgent string, opts ...Option) *Policy {
	p := &Policy{
		client:    http.DefaultClient,
		userAgent: userAgent,
		logger:    slog.New(slog.DiscardHandler),
		cache:     make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckSite evaluates the site-level robots.txt rules for target.
func (p *Policy) CheckSite(ctx context.Context, target *url.URL) error {
	data, err := p.robots(ctx, target)
	if err != nil {
		return err
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}

	if !data.TestAgent(path, p.userAgent) {
		return denied(LayerSite, Authority(target).String())
	}
	return nil
}

// CheckPage evaluates page-level directives. Access is denied when the page
// may not be indexed or its links may not be followed.
func (p *Policy) CheckPage(target *url.URL, header http.Header, doc *html.Node) error {
	rules := collectPageRules(header, doc, p.userAgent)
	if !rules.CanIndex() || !rules.CanFollow() {
		return denied(LayerPage, target.String())
	}
	return nil
}

// robots returns the parsed robots.txt for target's authority, downloading it
// on first use.
func (p *Policy) robots(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	authority := Authority(target)
	key := authority.String()

	p.mu.RLock()
	data, ok := p.cache[key]
	p.mu.RUnlock()
	if ok {
		return data, nil
	}

	ch := p.flight.DoChan(key, func() (any, error) {
		p.mu.RLock()
		cached, ok := p.cache[key]
		p.mu.RUnlock()
		if ok {
			return cached, nil
		}

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), robotsTimeout)
		defer cancel()

		loaded, err := p.load(loadCtx, authority)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.cache[key] = loaded
		p.mu.Unlock()

		if p.onCrawlDelay != nil {
			if group := loaded.FindGroup(p.userAgent); group != nil && group.CrawlDelay > 0 {
				p.onCrawlDelay(authority, group.CrawlDelay)
			}
		}
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*robotstxt.RobotsData), nil
	}
}

// load downloads and parses robots.txt for authority.
func (p *Policy) load(ctx context.Context, authority *url.URL) (*robotstxt.RobotsData, error) {
	location := robotsURL(authority).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create robots.txt request: %w", err)
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}

	p.logger.Debug("robots.txt loaded",
		"url", location,
		"status", resp.StatusCode,
	)
	return data, nil
}
