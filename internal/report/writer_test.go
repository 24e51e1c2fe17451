package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/tagtree/internal/model"
)

// sampleReport builds a small tree:
//
//	Victorian
//	├── alias: Victorian Era
//	├── parent: Historical
//	│   └── parent: Setting
//	└── child: Steampunk
func sampleReport() *Report {
	colour := model.RGB(0x12, 0x34, 0x56)

	root := model.NewCrawlResult(model.Tag{Name: "Victorian", Shorthand: "vic", Colour: &colour})
	historical := model.NewCrawlResult(model.Tag{Name: "Historical"})
	historical.Parents = append(historical.Parents, model.NewCrawlResult(model.Tag{Name: "Setting", Hidden: true}))

	root.Aliases = append(root.Aliases, model.NewCrawlResult(model.Tag{Name: "Victorian Era"}))
	root.Parents = append(root.Parents, historical)
	root.Children = append(root.Children, model.NewCrawlResult(model.Tag{Name: "Steampunk"}))

	return &Report{
		StartURL:  "https://example.com/tags/Victorian",
		CrawledAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:   1500 * time.Millisecond,
		Tree:      root,
	}
}

func TestReportCounts(t *testing.T) {
	t.Parallel()

	aliases, parents, children, total := sampleReport().Counts()
	if aliases != 1 || parents != 1 || children != 1 || total != 5 {
		t.Errorf("Counts() = %d, %d, %d, %d, want 1, 1, 1, 5", aliases, parents, children, total)
	}

	var empty *Report
	if _, _, _, total := empty.Counts(); total != 0 {
		t.Errorf("nil report total = %d, want 0", total)
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("renders summary and tree", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := sampleReport()
		report.RunID = "run-1"

		n, err := NewTextWriter(&buf).Write(report)
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("Write() = %d, want %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"Start URL: https://example.com/tags/Victorian\n",
			"Tags:      5 (1 aliases, 1 parents, 1 children)\n",
			"Elapsed:   1.5s\n",
			"Saved as:  run-1\n",
			"Victorian [vic, #123456ff]\n",
			"├── alias: Victorian Era\n",
			"├── parent: Historical\n",
			"│   └── parent: Setting [hidden]\n",
			"└── child: Steampunk\n",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
		if strings.Contains(out, "Status:") {
			t.Errorf("complete report should not carry a status line\n%s", out)
		}
	})

	t.Run("partial report is flagged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := sampleReport()
		report.Partial = true

		if _, err := NewTextWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "Status:    interrupted, partial tree") {
			t.Errorf("missing partial status\n%s", buf.String())
		}
	})

	t.Run("summary can be disabled", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithSummary(false)).Write(sampleReport()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Victorian [vic, #123456ff]\n") {
			t.Errorf("output should start with the root\n%s", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		opts []JSONWriterOption
	}{
		{name: "compact"},
		{name: "pretty", opts: []JSONWriterOption{WithPrettyPrint()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if _, err := NewJSONWriter(&buf, tc.opts...).Write(sampleReport()); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if !strings.HasSuffix(buf.String(), "\n") {
				t.Error("output should end with a newline")
			}

			var got struct {
				StartURL string             `json:"start_url"`
				Nodes    int                `json:"nodes"`
				Partial  bool               `json:"partial"`
				Tree     *model.CrawlResult `json:"tree"`
			}
			if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if got.StartURL != "https://example.com/tags/Victorian" {
				t.Errorf("start_url = %q", got.StartURL)
			}
			if got.Nodes != 5 {
				t.Errorf("nodes = %d, want 5", got.Nodes)
			}
			if got.Tree == nil || got.Tree.Size() != 5 {
				t.Fatalf("tree did not survive encoding: %+v", got.Tree)
			}
			if got.Tree.Tag.Colour == nil || *got.Tree.Tag.Colour != model.RGB(0x12, 0x34, 0x56) {
				t.Errorf("root colour = %v", got.Tree.Tag.Colour)
			}
			if got.Tree.Parents[0].Parents[0].Tag.Name != "Setting" {
				t.Errorf("nested parent = %q", got.Tree.Parents[0].Parents[0].Tag.Name)
			}
		})
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("complete report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := sampleReport()
		report.RunID = "run-1"

		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# Tag Tree: Victorian",
			"https://example.com/tags/Victorian",
			"run-1",
			"mermaid",
			"pie",
			"## Aliases",
			"## Parents",
			"## Children",
			"Victorian Era",
			"#123456ff",
			"Setting [hidden]",
			"Full tree",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q\n%s", want, out)
			}
		}
		if strings.Contains(out, "interrupted") {
			t.Errorf("complete report should not warn\n%s", out)
		}
	})

	t.Run("partial report warns", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := sampleReport()
		report.Partial = true

		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "The crawl was interrupted. 5 tag(s) were collected") {
			t.Errorf("missing partial warning\n%s", buf.String())
		}
	})

	t.Run("lone tag", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := &Report{
			StartURL: "https://example.com/tags/Lonely",
			Tree:     model.NewCrawlResult(model.Tag{Name: "Lonely"}),
		}

		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "no reachable aliases") {
			t.Errorf("missing lone tag note\n%s", out)
		}
		if strings.Contains(out, "mermaid") {
			t.Errorf("lone tag should not render a chart\n%s", out)
		}
	})
}

type failingWriter struct{}

func (failingWriter) Write(*Report) (int, error) {
	return 0, errors.New("boom")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to every writer", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		n, err := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&js)).Write(sampleReport())
		if err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("Write() = %d, want %d", n, text.Len()+js.Len())
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("both writers should receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		_, err := NewMultiWriter(failingWriter{}, NewTextWriter(&after)).Write(sampleReport())
		if err == nil {
			t.Fatal("expected an error")
		}
		if after.Len() != 0 {
			t.Error("writers after the failure should not run")
		}
	})
}
