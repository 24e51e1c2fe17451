package crawler

import (
	"sync"

	"github.com/nao1215/tagtree/internal/model"
)

// collector gathers subtrees produced by concurrent sibling visits.
type collector struct {
	mu    sync.Mutex
	nodes []*model.CrawlResult
}

func (c *collector) add(node *model.CrawlResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = append(c.nodes, node)
}

// results returns the collected subtrees. It must only be called after every
// producer has finished.
func (c *collector) results() []*model.CrawlResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nodes == nil {
		return make([]*model.CrawlResult, 0)
	}
	return c.nodes
}
