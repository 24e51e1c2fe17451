package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/tagtree/internal/model"
)

// TextWriter outputs the tree as indented text.
type TextWriter struct {
	baseWriter

	// showSummary prints a header with counts above the tree.
	showSummary bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithSummary toggles the summary header.
func WithSummary(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showSummary = show
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter:  newBaseWriter(output),
		showSummary: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as text.
func (w *TextWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	if w.showSummary {
		aliases, parents, children, total := report.Counts()
		sb.WriteString("Start URL: " + report.StartURL + "\n")
		fmt.Fprintf(&sb, "Tags:      %d (%d aliases, %d parents, %d children)\n", total, aliases, parents, children)
		fmt.Fprintf(&sb, "Elapsed:   %s\n", report.Elapsed.Round(time.Millisecond))
		if report.RunID != "" {
			sb.WriteString("Saved as:  " + report.RunID + "\n")
		}
		if report.Partial {
			sb.WriteString("Status:    interrupted, partial tree\n")
		}
		sb.WriteString("\n")
	}

	if report.Tree != nil {
		sb.WriteString(tagLabel(report.Tree.Tag) + "\n")
		writeTextTree(&sb, report.Tree, "")
	}

	return io.WriteString(w.output, sb.String())
}

// writeTextTree writes the subtrees of node with box-drawing connectors.
func writeTextTree(sb *strings.Builder, node *model.CrawlResult, prefix string) {
	type edge struct {
		rel  model.Relation
		node *model.CrawlResult
	}
	var edges []edge
	for _, rel := range model.Relations {
		for _, sub := range node.Related(rel) {
			edges = append(edges, edge{rel, sub})
		}
	}

	for i, e := range edges {
		connector, next := "├── ", "│   "
		if i == len(edges)-1 {
			connector, next = "└── ", "    "
		}
		sb.WriteString(prefix + connector + string(e.rel) + ": " + tagLabel(e.node.Tag) + "\n")
		writeTextTree(sb, e.node, prefix+next)
	}
}

// tagLabel renders a tag name with its optional attributes.
func tagLabel(t model.Tag) string {
	var attrs []string
	if t.Shorthand != "" {
		attrs = append(attrs, t.Shorthand)
	}
	if t.Colour != nil {
		attrs = append(attrs, t.Colour.String())
	}
	if t.Hidden {
		attrs = append(attrs, "hidden")
	}
	if len(attrs) == 0 {
		return t.Name
	}
	return t.Name + " [" + strings.Join(attrs, ", ") + "]"
}
