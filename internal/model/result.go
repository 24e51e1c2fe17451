package model

// Relation names the kind of link between a node and one of its subtrees.
type Relation string

const (
	// RelationAlias links a tag to a synonym.
	RelationAlias Relation = "alias"
	// RelationParent links a tag to a broader tag.
	RelationParent Relation = "parent"
	// RelationChild links a tag to a narrower tag.
	RelationChild Relation = "child"
)

// Relations lists every relation in the order reports render them.
var Relations = []Relation{RelationAlias, RelationParent, RelationChild}

// CrawlResult is one node of the crawl tree. The node exclusively owns its
// subtrees. Sibling order within a collection carries no meaning.
type CrawlResult struct {
	// Tag is the descriptor extracted from this node's page.
	Tag Tag `json:"tag"`

	// Aliases holds the subtrees reached through alias links.
	Aliases []*CrawlResult `json:"aliases"`

	// Parents holds the subtrees reached through parent links.
	Parents []*CrawlResult `json:"parents"`

	// Children holds the subtrees reached through child links.
	Children []*CrawlResult `json:"children"`
}

// NewCrawlResult returns a node for tag with empty collections.
func NewCrawlResult(tag Tag) *CrawlResult {
	return &CrawlResult{
		Tag:      tag,
		Aliases:  make([]*CrawlResult, 0),
		Parents:  make([]*CrawlResult, 0),
		Children: make([]*CrawlResult, 0),
	}
}

// Related returns the collection for the given relation.
func (r *CrawlResult) Related(rel Relation) []*CrawlResult {
	switch rel {
	case RelationAlias:
		return r.Aliases
	case RelationParent:
		return r.Parents
	case RelationChild:
		return r.Children
	default:
		return nil
	}
}

// SetRelated replaces the collection for the given relation.
func (r *CrawlResult) SetRelated(rel Relation, nodes []*CrawlResult) {
	switch rel {
	case RelationAlias:
		r.Aliases = nodes
	case RelationParent:
		r.Parents = nodes
	case RelationChild:
		r.Children = nodes
	}
}

// Size returns the number of nodes in the tree rooted at r.
func (r *CrawlResult) Size() int {
	if r == nil {
		return 0
	}
	n := 1
	for _, rel := range Relations {
		for _, sub := range r.Related(rel) {
			n += sub.Size()
		}
	}
	return n
}

// WalkFunc is called for every node during Walk. For the root, parent is nil
// and rel is empty. Returning an error stops the walk.
type WalkFunc func(parent *CrawlResult, rel Relation, node *CrawlResult) error

// Walk visits the tree in pre-order: a node before its subtrees, aliases
// before parents before children.
func (r *CrawlResult) Walk(fn WalkFunc) error {
	if r == nil {
		return nil
	}
	return r.walk(nil, "", fn)
}

func (r *CrawlResult) walk(parent *CrawlResult, rel Relation, fn WalkFunc) error {
	if err := fn(parent, rel, r); err != nil {
		return err
	}
	for _, sub := range Relations {
		for _, node := range r.Related(sub) {
			if err := node.walk(r, sub, fn); err != nil {
				return err
			}
		}
	}
	return nil
}
