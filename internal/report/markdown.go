package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/tagtree/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for tables, alerts
// and the mermaid chart, and emit the nested tree as raw list lines because
// the library's lists are flat.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeRelations(md, report)
	w.writeTree(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl summary table and status alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	name := "-"
	if report.Tree != nil {
		name = report.Tree.Tag.Name
	}
	md.H1("Tag Tree: " + name)
	md.PlainText("")

	aliases, parents, children, total := report.Counts()
	rows := [][]string{
		{"Start URL", report.StartURL},
		{"Crawled At", report.CrawledAt.Format("2006-01-02 15:04:05 MST")},
		{"Elapsed", report.Elapsed.String()},
		{"Tags", strconv.Itoa(total)},
		{"Aliases", strconv.Itoa(aliases)},
		{"Parents", strconv.Itoa(parents)},
		{"Children", strconv.Itoa(children)},
	}
	if report.RunID != "" {
		rows = append(rows, []string{"Run", "`" + report.RunID + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case report.Partial:
		md.Warningf("The crawl was interrupted. %d tag(s) were collected before it stopped.", total)
	case total <= 1:
		md.Note("The tag has no reachable aliases, parents or children.")
	}
	md.PlainText("")

	if aliases+parents+children > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Direct Relations"),
			piechart.WithShowData(true),
		)
		if aliases > 0 {
			chart.LabelAndIntValue("Aliases", uint64(aliases))
		}
		if parents > 0 {
			chart.LabelAndIntValue("Parents", uint64(parents))
		}
		if children > 0 {
			chart.LabelAndIntValue("Children", uint64(children))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

// writeRelations writes one table per relation kind of the root.
func (w *MarkdownWriter) writeRelations(md *markdown.Markdown, report *Report) {
	if report.Tree == nil {
		return
	}

	headings := map[model.Relation]string{
		model.RelationAlias:  "Aliases",
		model.RelationParent: "Parents",
		model.RelationChild:  "Children",
	}

	for _, rel := range model.Relations {
		nodes := report.Tree.Related(rel)
		md.H2(headings[rel])
		md.PlainText("")

		if len(nodes) == 0 {
			md.PlainText("None.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, len(nodes))
		for i, n := range nodes {
			rows[i] = []string{
				n.Tag.Name,
				orDash(n.Tag.Shorthand),
				colourCell(n.Tag.Colour),
				strconv.Itoa(n.Size() - 1),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Tag", "Shorthand", "Colour", "Descendants"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeTree writes the whole tree as a nested list inside a details block.
func (w *MarkdownWriter) writeTree(md *markdown.Markdown, report *Report) {
	if report.Tree == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("\n- " + tagLabel(report.Tree.Tag) + "\n")
	writeMarkdownTree(&sb, report.Tree, "  ")

	md.H2("Tree")
	md.PlainText("")
	md.Details("Full tree", sb.String())
	md.PlainText("")
}

func writeMarkdownTree(sb *strings.Builder, node *model.CrawlResult, indent string) {
	for _, rel := range model.Relations {
		for _, sub := range node.Related(rel) {
			sb.WriteString(indent + "- *" + string(rel) + "*: " + tagLabel(sub.Tag) + "\n")
			writeMarkdownTree(sb, sub, indent+"  ")
		}
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [tagtree](https://github.com/nao1215/tagtree)*")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func colourCell(c *model.Colour) string {
	if c == nil {
		return "-"
	}
	return "`" + c.String() + "`"
}
