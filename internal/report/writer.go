package report

import (
	"io"
	"time"

	"github.com/nao1215/tagtree/internal/model"
)

// Report is a finished or interrupted crawl as presented to the user.
type Report struct {
	// StartURL is the URL the crawl started from.
	StartURL string `json:"start_url"`

	// CrawledAt is when the crawl started.
	CrawledAt time.Time `json:"crawled_at"`

	// Elapsed is the wall time of the crawl.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Partial is true when the crawl was cancelled or timed out and Tree
	// holds only what had completed.
	Partial bool `json:"partial"`

	// RunID identifies the stored crawl run. Empty when the tree was not
	// saved.
	RunID string `json:"run_id,omitempty"`

	// Tree is the crawl result.
	Tree *model.CrawlResult `json:"tree"`
}

// Counts returns the number of direct aliases, parents and children of the
// root and the total node count.
func (r *Report) Counts() (aliases, parents, children, total int) {
	if r == nil || r.Tree == nil {
		return 0, 0, 0, 0
	}
	return len(r.Tree.Aliases), len(r.Tree.Parents), len(r.Tree.Children), r.Tree.Size()
}

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *Report) (int, error)
}

// MultiWriter writes to multiple Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
