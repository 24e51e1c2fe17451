package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/tagtree/internal/fetch"
	"github.com/nao1215/tagtree/internal/metrics"
	"github.com/nao1215/tagtree/internal/model"
	"github.com/nao1215/tagtree/internal/robots"
	"github.com/nao1215/tagtree/internal/site"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/net/html"
)

// pageHTML renders a tag page understood by testExtractor.
func pageHTML(name string, aliases, parents, children []string) string {
	var b strings.Builder
	b.WriteString("<html><body><h1>" + name + "</h1>")
	for _, list := range []struct {
		class string
		hrefs []string
	}{
		{"aliases", aliases},
		{"parents", parents},
		{"children", children},
	} {
		b.WriteString(`<ul class="` + list.class + `">`)
		for _, href := range list.hrefs {
			b.WriteString(`<li><a href="` + href + `">` + href + `</a></li>`)
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func testExtractor(t *testing.T) site.Extractor {
	t.Helper()
	ex, err := site.NewSelector("test", site.Selectors{
		Name:     "h1",
		Aliases:  "ul.aliases a",
		Parents:  "ul.parents a",
		Children: "ul.children a",
	})
	if err != nil {
		t.Fatalf("NewSelector() error = %v", err)
	}
	return ex
}

// graphServer serves pages by path. Paths missing from pages answer 404,
// paths in statuses answer with that status.
func graphServer(t *testing.T, pages map[string]string, statuses map[string]int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code, ok := statuses[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) error = %v", raw, err)
	}
	return u
}

// recordingHandler keeps every log record for later assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// urls returns the "url" attribute of every record at level.
func (h *recordingHandler) urls(level slog.Level) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, r := range h.records {
		if r.Level != level {
			continue
		}
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "url" {
				out = append(out, a.Value.String())
				return false
			}
			return true
		})
	}
	return out
}

func names(nodes []*model.CrawlResult) map[string]int {
	out := make(map[string]int, len(nodes))
	for _, n := range nodes {
		out[n.Tag.Name]++
	}
	return out
}

// countingGuard records calls and denies site-level access to denyPaths.
type countingGuard struct {
	siteCalls atomic.Int32
	pageCalls atomic.Int32
	denyPaths map[string]bool
}

func (g *countingGuard) CheckSite(_ context.Context, target *url.URL) error {
	g.siteCalls.Add(1)
	if g.denyPaths[target.Path] {
		return &robots.AccessDeniedError{Layer: robots.LayerSite, Origin: robots.Authority(target).String(), ByPolicy: true}
	}
	return nil
}

func (g *countingGuard) CheckPage(*url.URL, http.Header, *html.Node) error {
	g.pageCalls.Add(1)
	return nil
}

func TestCrawlPageWithoutLinks(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, map[string]string{
		"/tags/lonely": pageHTML("Lonely", nil, nil, nil),
	}, nil)

	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t))
	tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/lonely"), false)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if tree.Tag.Name != "Lonely" {
		t.Errorf("Name = %q, want Lonely", tree.Tag.Name)
	}
	for _, rel := range model.Relations {
		got := tree.Related(rel)
		if got == nil || len(got) != 0 {
			t.Errorf("%s collection = %v, want empty non-nil", rel, got)
		}
	}
}

func TestCrawlEndToEnd(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, map[string]string{
		"/tags/root":   pageHTML("Root", []string{"/tags/alias"}, []string{"/tags/gone", "/tags/parent"}, nil),
		"/tags/parent": pageHTML("Parent", nil, nil, nil),
		"/tags/alias":  pageHTML("Alias", nil, nil, nil),
	}, nil)

	logs := &recordingHandler{}
	rec := metrics.NewRecorder()
	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t),
		WithLogger(slog.New(logs)),
		WithMetrics(rec),
	)

	tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/root"), false)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if len(tree.Parents) != 1 || tree.Parents[0].Tag.Name != "Parent" {
		t.Errorf("Parents = %v, want [Parent]", names(tree.Parents))
	}
	if len(tree.Aliases) != 1 || tree.Aliases[0].Tag.Name != "Alias" {
		t.Errorf("Aliases = %v, want [Alias]", names(tree.Aliases))
	}
	if len(tree.Children) != 0 {
		t.Errorf("Children = %v, want none", names(tree.Children))
	}

	warned := logs.urls(slog.LevelWarn)
	if len(warned) != 1 || warned[0] != srv.URL+"/tags/gone" {
		t.Errorf("warnings for %v, want exactly the dropped parent", warned)
	}
	if errs := logs.urls(slog.LevelError); len(errs) != 0 {
		t.Errorf("unexpected error logs for %v", errs)
	}

	expected := `
# HELP tagtree_links_pruned_total Total number of links dropped from the tree after a failed visit.
# TYPE tagtree_links_pruned_total counter
tagtree_links_pruned_total{reason="not_found"} 1
# HELP tagtree_pages_fetched_total Total number of tag pages fetched and parsed.
# TYPE tagtree_pages_fetched_total counter
tagtree_pages_fetched_total 3
`
	if err := testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
		"tagtree_pages_fetched_total", "tagtree_links_pruned_total"); err != nil {
		t.Error(err)
	}
}

func TestCrawlOtherFailureLoggedAsError(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, map[string]string{
		"/tags/root": pageHTML("Root", []string{"/tags/gone"}, nil, []string{"/tags/broken", "/tags/ok"}),
		"/tags/ok":   pageHTML("Ok", nil, nil, nil),
	}, map[string]int{
		"/tags/broken": http.StatusInternalServerError,
	})

	logs := &recordingHandler{}
	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t), WithLogger(slog.New(logs)))

	tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/root"), false)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if got := names(tree.Children); len(got) != 1 || got["Ok"] != 1 {
		t.Errorf("Children = %v, want [Ok]", got)
	}
	if len(tree.Aliases) != 0 {
		t.Errorf("Aliases = %v, want none", names(tree.Aliases))
	}

	if errs := logs.urls(slog.LevelError); len(errs) != 1 || errs[0] != srv.URL+"/tags/broken" {
		t.Errorf("error logs for %v, want only the broken child", errs)
	}
	if warned := logs.urls(slog.LevelWarn); len(warned) != 1 || warned[0] != srv.URL+"/tags/gone" {
		t.Errorf("warnings for %v, want only the missing alias", warned)
	}
}

func TestCrawlManySiblings(t *testing.T) {
	t.Parallel()

	const n = 50
	pages := map[string]string{}
	children := make([]string, 0, n)
	for i := range n {
		path := fmt.Sprintf("/tags/child-%02d", i)
		children = append(children, path)
		pages[path] = pageHTML(fmt.Sprintf("Child %02d", i), nil, nil, nil)
	}
	pages["/tags/root"] = pageHTML("Root", nil, nil, children)
	srv := graphServer(t, pages, nil)

	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t))
	start := mustParseURL(t, srv.URL+"/tags/root")

	for iter := range 20 {
		tree, err := engine.Crawl(context.Background(), start, false)
		if err != nil {
			t.Fatalf("iteration %d: Crawl() error = %v", iter, err)
		}
		got := names(tree.Children)
		if len(tree.Children) != n || len(got) != n {
			t.Fatalf("iteration %d: got %d children (%d distinct), want %d", iter, len(tree.Children), len(got), n)
		}
		for name, count := range got {
			if count != 1 {
				t.Fatalf("iteration %d: %s appears %d times", iter, name, count)
			}
		}
	}
}

func TestCrawlEnforcementDisabledSkipsGuard(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, map[string]string{
		"/tags/root":  pageHTML("Root", nil, []string{"/tags/other"}, nil),
		"/tags/other": pageHTML("Other", nil, nil, nil),
	}, nil)

	guard := &countingGuard{}
	engine := NewEngine(fetch.NewFetcher(srv.Client()), guard, testExtractor(t))
	start := mustParseURL(t, srv.URL+"/tags/root")

	if _, err := engine.Crawl(context.Background(), start, false); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if s, p := guard.siteCalls.Load(), guard.pageCalls.Load(); s != 0 || p != 0 {
		t.Errorf("guard called %d site / %d page times with enforcement disabled", s, p)
	}

	if _, err := engine.Crawl(context.Background(), start, true); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if s, p := guard.siteCalls.Load(), guard.pageCalls.Load(); s != 2 || p != 2 {
		t.Errorf("guard called %d site / %d page times, want 2 each", s, p)
	}
}

func TestCrawlWithoutGuard(t *testing.T) {
	t.Parallel()

	engine := NewEngine(fetch.NewFetcher(nil), nil, testExtractor(t))
	_, err := engine.Crawl(context.Background(), mustParseURL(t, "http://127.0.0.1:1/"), true)
	if !errors.Is(err, ErrNoGuard) {
		t.Errorf("Crawl() error = %v, want ErrNoGuard", err)
	}
}

func TestCrawlPolicyDenial(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		"/tags/root":   pageHTML("Root", nil, []string{"/tags/denied", "/tags/fine"}, nil),
		"/tags/fine":   pageHTML("Fine", nil, nil, []string{"/tags/deep"}),
		"/tags/deep":   pageHTML("Deep", nil, nil, nil),
		"/tags/denied": pageHTML("Denied", nil, nil, nil),
	}

	tests := []struct {
		name string
		deny string
	}{
		{"root denied", "/tags/root"},
		{"direct child denied", "/tags/denied"},
		{"grandchild denied", "/tags/deep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := graphServer(t, pages, nil)
			guard := &countingGuard{denyPaths: map[string]bool{tt.deny: true}}
			rec := metrics.NewRecorder()
			engine := NewEngine(fetch.NewFetcher(srv.Client()), guard, testExtractor(t), WithMetrics(rec))

			tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/root"), true)
			if !robots.IsAccessDenied(err) {
				t.Fatalf("Crawl() error = %v, want access denied", err)
			}
			if tree != nil {
				t.Errorf("Crawl() returned a tree alongside a policy denial")
			}

			expected := `
# HELP tagtree_policy_denials_total Total number of visits denied by a crawl policy.
# TYPE tagtree_policy_denials_total counter
tagtree_policy_denials_total{layer="site-level"} 1
`
			if err := testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected),
				"tagtree_policy_denials_total"); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestCrawlPageLevelDenialFromRobotsPolicy(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
		case "/tags/root":
			_, _ = w.Write([]byte(pageHTML("Root", nil, nil, []string{"/tags/private"})))
		case "/tags/private":
			w.Header().Set("X-Robots-Tag", "noindex")
			_, _ = w.Write([]byte(pageHTML("Private", nil, nil, nil)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	const agent = "tagtree-test/1.0"
	policy := robots.NewPolicy(agent, robots.WithHTTPClient(srv.Client()))
	engine := NewEngine(fetch.NewFetcher(srv.Client(), fetch.WithUserAgent(agent)), policy, testExtractor(t))

	_, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/root"), true)
	var denied *robots.AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Crawl() error = %v, want *robots.AccessDeniedError", err)
	}
	if denied.Layer != robots.LayerPage {
		t.Errorf("Layer = %v, want page-level", denied.Layer)
	}

	tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/root"), false)
	if err != nil {
		t.Fatalf("Crawl() without enforcement error = %v", err)
	}
	if len(tree.Children) != 1 {
		t.Errorf("Children = %v, want [Private]", names(tree.Children))
	}
}

func TestCrawlRootFailure(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, nil, map[string]int{"/tags/broken": http.StatusBadGateway})
	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t))

	tests := []struct {
		path     string
		notFound bool
	}{
		{"/tags/missing", true},
		{"/tags/broken", false},
	}
	for _, tt := range tests {
		tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+tt.path), false)
		if err == nil {
			t.Fatalf("Crawl(%s) error = nil, want failure", tt.path)
		}
		if tree != nil {
			t.Errorf("Crawl(%s) returned a tree for a failed root", tt.path)
		}
		if got := fetch.IsNotFound(err); got != tt.notFound {
			t.Errorf("Crawl(%s) IsNotFound = %v, want %v", tt.path, got, tt.notFound)
		}
	}
}

func TestCrawlResolvesAgainstRedirectTarget(t *testing.T) {
	t.Parallel()

	target := graphServer(t, map[string]string{
		"/tags/start": pageHTML("Start", nil, nil, []string{"/tags/child"}),
		"/tags/child": pageHTML("Child on target", nil, nil, nil),
	}, nil)

	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tags/start" {
			http.Redirect(w, r, target.URL+"/tags/start", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(pageHTML("Child on origin", nil, nil, nil)))
	}))
	t.Cleanup(origin.Close)

	engine := NewEngine(fetch.NewFetcher(&http.Client{}), nil, testExtractor(t))
	tree, err := engine.Crawl(context.Background(), mustParseURL(t, origin.URL+"/tags/start"), false)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if got := names(tree.Children); got["Child on target"] != 1 || len(got) != 1 {
		t.Errorf("Children = %v, want [Child on target]", got)
	}
}

func TestCrawlCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tags/root" {
			_, _ = w.Write([]byte(pageHTML("Root", nil, nil, []string{"/tags/slow"})))
			return
		}
		once.Do(func() { close(started) })
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-started
		cancel()
	}()

	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t))
	tree, err := engine.Crawl(ctx, mustParseURL(t, srv.URL+"/tags/root"), false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Crawl() error = %v, want context.Canceled", err)
	}
	if tree == nil || tree.Tag.Name != "Root" {
		t.Fatalf("Crawl() partial tree = %v, want root node", tree)
	}
	if len(tree.Children) != 0 {
		t.Errorf("Children = %v, want the cancelled visit dropped", names(tree.Children))
	}
}

// cancellingFetcher serves pages from memory and calls cancel right after
// serving cancelAfter.
type cancellingFetcher struct {
	pages       map[string]string
	cancelAfter string
	cancel      context.CancelFunc
}

func (f *cancellingFetcher) Fetch(ctx context.Context, target *url.URL) (*fetch.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, ok := f.pages[target.Path]
	if !ok {
		return nil, &fetch.StatusError{URL: target.String(), StatusCode: http.StatusNotFound}
	}
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	if target.Path == f.cancelAfter {
		f.cancel()
	}
	return &fetch.Page{URL: target, StatusCode: http.StatusOK, Header: http.Header{}, Doc: doc}, nil
}

func TestCrawlCancelledBeforeFanOut(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &cancellingFetcher{
		pages: map[string]string{
			"/tags/root":  pageHTML("Root", nil, nil, []string{"/tags/child"}),
			"/tags/child": pageHTML("Child", nil, nil, nil),
		},
		cancelAfter: "/tags/root",
		cancel:      cancel,
	}

	engine := NewEngine(fetcher, nil, testExtractor(t))
	tree, err := engine.Crawl(ctx, mustParseURL(t, "http://tags.test/tags/root"), false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Crawl() error = %v, want context.Canceled", err)
	}
	if tree == nil || tree.Tag.Name != "Root" {
		t.Fatalf("Crawl() partial tree = %v, want root node", tree)
	}
	if len(tree.Children) != 0 {
		t.Errorf("Children = %v, want none", names(tree.Children))
	}
}

func TestCrawlCancelledLeafPage(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &cancellingFetcher{
		pages: map[string]string{
			"/tags/root": pageHTML("Root", nil, nil, nil),
		},
		cancelAfter: "/tags/root",
		cancel:      cancel,
	}

	engine := NewEngine(fetcher, nil, testExtractor(t))
	if _, err := engine.Crawl(ctx, mustParseURL(t, "http://tags.test/tags/root"), false); !errors.Is(err, context.Canceled) {
		t.Fatalf("Crawl() error = %v, want context.Canceled", err)
	}
}

func TestCrawlCancelledDescendantMarksTreePartial(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &cancellingFetcher{
		pages: map[string]string{
			"/tags/root": pageHTML("Root", nil, nil, []string{"/tags/mid"}),
			"/tags/mid":  pageHTML("Mid", nil, nil, []string{"/tags/leaf"}),
			"/tags/leaf": pageHTML("Leaf", nil, nil, nil),
		},
		cancelAfter: "/tags/mid",
		cancel:      cancel,
	}

	engine := NewEngine(fetcher, nil, testExtractor(t))
	tree, err := engine.Crawl(ctx, mustParseURL(t, "http://tags.test/tags/root"), false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Crawl() error = %v, want context.Canceled", err)
	}
	if tree == nil {
		t.Fatal("Crawl() returned no partial tree")
	}
	if len(tree.Children) != 1 || tree.Children[0].Tag.Name != "Mid" {
		t.Fatalf("Children = %v, want the interrupted Mid node", names(tree.Children))
	}
	if got := tree.Children[0].Children; len(got) != 0 {
		t.Errorf("Mid children = %v, want none after cancellation", names(got))
	}
}

func TestCrawlMaxDepth(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, map[string]string{
		"/tags/loop": pageHTML("Loop", nil, nil, []string{"/tags/loop"}),
	}, nil)

	tests := []struct {
		depth int
		want  int
	}{
		{1, 2},
		{3, 4},
	}
	for _, tt := range tests {
		engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t), WithMaxDepth(tt.depth))
		tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/loop"), false)
		if err != nil {
			t.Fatalf("Crawl() error = %v", err)
		}
		if got := tree.Size(); got != tt.want {
			t.Errorf("WithMaxDepth(%d): Size() = %d, want %d", tt.depth, got, tt.want)
		}
	}
}

func TestCrawlTimeoutStopsCycle(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, map[string]string{
		"/tags/loop": pageHTML("Loop", nil, nil, []string{"/tags/loop"}),
	}, nil)

	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, testExtractor(t),
		WithCrawlTimeout(200*time.Millisecond),
	)
	tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/loop"), false)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Crawl() error = %v, want context.DeadlineExceeded", err)
	}
	if tree == nil {
		t.Fatal("Crawl() returned no partial tree")
	}
}

// markedExtractor adds a fixed parent marker to every page.
type markedExtractor struct {
	site.Extractor
}

func (markedExtractor) ParentMarkers(*html.Node) []model.Tag {
	return []model.Tag{{Name: "Marker"}}
}

func TestCrawlParentMarkers(t *testing.T) {
	t.Parallel()

	srv := graphServer(t, map[string]string{
		"/tags/root":   pageHTML("Root", nil, []string{"/tags/parent"}, nil),
		"/tags/parent": pageHTML("Parent", nil, nil, nil),
	}, nil)

	engine := NewEngine(fetch.NewFetcher(srv.Client()), nil, markedExtractor{testExtractor(t)})
	tree, err := engine.Crawl(context.Background(), mustParseURL(t, srv.URL+"/tags/root"), false)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	got := names(tree.Parents)
	if got["Marker"] != 1 || got["Parent"] != 1 || len(tree.Parents) != 2 {
		t.Errorf("Parents = %v, want Marker and Parent", got)
	}
	for _, p := range tree.Parents {
		if p.Tag.Name == "Parent" && len(p.Parents) != 1 {
			t.Errorf("fetched parent carries %d markers, want 1", len(p.Parents))
		}
	}
}
