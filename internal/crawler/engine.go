package crawler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/url"
	"time"

	"github.com/nao1215/tagtree/internal/fetch"
	"github.com/nao1215/tagtree/internal/metrics"
	"github.com/nao1215/tagtree/internal/model"
	"github.com/nao1215/tagtree/internal/robots"
	"github.com/nao1215/tagtree/internal/site"
	"golang.org/x/sync/errgroup"
)

// ErrNoGuard is returned when policy enforcement is requested from an engine
// built without a guard.
var ErrNoGuard = errors.New("crawl policy enforcement requested without a guard")

// PageFetcher retrieves and parses a page. *fetch.Fetcher implements it.
type PageFetcher interface {
	Fetch(ctx context.Context, target *url.URL) (*fetch.Page, error)
}

// Engine crawls tag pages into a model.CrawlResult tree.
// An Engine is safe for concurrent use by multiple crawls.
type Engine struct {
	fetcher   PageFetcher
	guard     robots.Guard
	extractor site.Extractor

	logger  *slog.Logger
	metrics *metrics.Recorder

	maxDepth     int
	crawlTimeout time.Duration
	fanOutLimit  int
}

// NewEngine creates an Engine. guard may be nil if the engine is only ever
// used with enforcement disabled.
func NewEngine(fetcher PageFetcher, guard robots.Guard, extractor site.Extractor, opts ...Option) *Engine {
	e := &Engine{
		fetcher:   fetcher,
		guard:     guard,
		extractor: extractor,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Crawl builds the tag tree reachable from start.
//
// When enforce is false no crawl policy is consulted at all. Any failure of
// the start page is returned as is. Below the start page, policy denials
// abort the crawl and other failures prune the affected branch.
//
// If ctx is cancelled or the crawl timeout expires, Crawl returns the part of
// the tree that had completed together with the context error.
func (e *Engine) Crawl(ctx context.Context, start *url.URL, enforce bool) (*model.CrawlResult, error) {
	if enforce && e.guard == nil {
		return nil, ErrNoGuard
	}

	if e.crawlTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.crawlTimeout)
		defer cancel()
	}

	e.logger.Info("crawl started",
		"url", start.String(),
		"enforce_policy", enforce,
		"extractor", e.extractor.Name(),
	)

	began := time.Now()
	root, err := e.visit(ctx, start, enforce, 0)
	if err != nil {
		if ctx.Err() != nil {
			return root, err
		}
		return nil, err
	}

	e.logger.Info("crawl finished",
		"url", start.String(),
		"tag", root.Tag.Name,
		"nodes", root.Size(),
		"elapsed", time.Since(began).String(),
	)
	return root, nil
}

// visit crawls one page and, recursively, its relation links.
//
// On failure visit returns a nil node, except when the failure happened while
// fanning out. Then the node holds the subtrees that had completed.
func (e *Engine) visit(ctx context.Context, target *url.URL, enforce bool, depth int) (*model.CrawlResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("visiting tag page", "url", target.String(), "depth", depth)
	began := time.Now()

	if enforce {
		if err := e.guard.CheckSite(ctx, target); err != nil {
			e.recordDenial(err)
			return nil, err
		}
	}

	page, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	e.metrics.PageFetched()

	if enforce {
		if err := e.guard.CheckPage(page.URL, page.Header, page.Doc); err != nil {
			e.recordDenial(err)
			return nil, err
		}
	}

	tag, err := e.extractor.Descriptor(page.Doc)
	if err != nil {
		return nil, fmt.Errorf("failed to extract tag from %s: %w", page.URL, err)
	}
	e.metrics.ObserveVisit(time.Since(began))

	node := model.NewCrawlResult(tag)
	if ms, ok := e.extractor.(site.MarkerSource); ok {
		for _, marker := range ms.ParentMarkers(page.Doc) {
			node.Parents = append(node.Parents, model.NewCrawlResult(marker))
		}
	}

	if e.maxDepth > 0 && depth >= e.maxDepth {
		return node, nil
	}

	// Links resolve against the page actually served, which differs from
	// target after a cross-authority redirect.
	base := robots.Authority(page.URL)

	results := make([][]*model.CrawlResult, len(model.Relations))
	g, gctx := errgroup.WithContext(ctx)
	for i, rel := range model.Relations {
		links := site.Links(e.extractor, rel, page.Doc)
		g.Go(func() error {
			nodes, err := e.fanOut(gctx, base, rel, links, enforce, depth+1)
			results[i] = nodes
			return err
		})
	}
	err = g.Wait()

	for i, rel := range model.Relations {
		node.SetRelated(rel, append(node.Related(rel), results[i]...))
	}
	return node, err
}

// fanOut visits every link of one relation kind concurrently and collects the
// successful subtrees. It returns an error only for policy denials and
// cancellation, including a cancellation noticed after the last visit
// finished. Every other failure prunes the link.
func (e *Engine) fanOut(
	ctx context.Context,
	base *url.URL,
	rel model.Relation,
	links iter.Seq[*url.URL],
	enforce bool,
	depth int,
) ([]*model.CrawlResult, error) {
	var c collector

	g, gctx := errgroup.WithContext(ctx)
	if e.fanOutLimit > 0 {
		g.SetLimit(e.fanOutLimit)
	}

	var stopped error
	for link := range links {
		if err := gctx.Err(); err != nil {
			stopped = err
			break
		}
		target := base.ResolveReference(link)
		g.Go(func() error {
			sub, err := e.visit(gctx, target, enforce, depth)
			if err == nil {
				c.add(sub)
				return nil
			}
			err = e.classify(gctx, rel, target, err)
			// A cancelled visit keeps the part of its subtree that completed.
			if sub != nil && err != nil && !robots.IsAccessDenied(err) {
				c.add(sub)
			}
			return err
		})
	}

	err := g.Wait()
	if err == nil {
		err = stopped
	}
	// Cancellation with nothing left in flight still leaves the node
	// incomplete.
	if err == nil {
		err = ctx.Err()
	}
	return c.results(), err
}

// classify decides whether a failed link visit aborts its fan-out.
// A nil return prunes the link.
func (e *Engine) classify(ctx context.Context, rel model.Relation, target *url.URL, err error) error {
	switch {
	case robots.IsAccessDenied(err):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	case fetch.IsNotFound(err):
		e.metrics.LinkPruned(metrics.ReasonNotFound)
		e.logger.Warn("tag page not found, dropping it from the tree",
			"relation", string(rel),
			"url", target.String(),
		)
		return nil
	default:
		e.metrics.LinkPruned(metrics.ReasonError)
		e.logger.Error("failed to crawl tag page, dropping it from the tree",
			"relation", string(rel),
			"url", target.String(),
			"error", err,
		)
		return nil
	}
}

func (e *Engine) recordDenial(err error) {
	if d, ok := robots.Decide(err); ok && !d.Allowed {
		e.metrics.PolicyDenied(d.Layer.String())
	}
}
