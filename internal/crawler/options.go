package crawler

import (
	"log/slog"
	"time"

	"github.com/nao1215/tagtree/internal/metrics"
)

// Option configures an Engine.
type Option func(*Engine)

// WithMaxDepth limits recursion. Links found on a page at depth n are not
// followed when n >= depth. The start page is at depth 0. Zero, the default,
// means unlimited.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		if depth >= 0 {
			e.maxDepth = depth
		}
	}
}

// WithCrawlTimeout bounds the whole crawl. Zero means no limit beyond the
// caller's context.
func WithCrawlTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.crawlTimeout = d
		}
	}
}

// WithFanOutLimit caps the number of concurrent visits started from one
// relation kind of one page. Zero, the default, means no cap.
func WithFanOutLimit(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.fanOutLimit = n
		}
	}
}

// WithLogger sets the logger used for pruned branches and progress.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics records crawl metrics into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}
