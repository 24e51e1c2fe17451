package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/tagtree/internal/config"
	"github.com/nao1215/tagtree/internal/crawler"
	"github.com/nao1215/tagtree/internal/fetch"
	"github.com/nao1215/tagtree/internal/log"
	"github.com/nao1215/tagtree/internal/metrics"
	"github.com/nao1215/tagtree/internal/model"
	"github.com/nao1215/tagtree/internal/report"
	"github.com/nao1215/tagtree/internal/robots"
	"github.com/nao1215/tagtree/internal/site"
	"github.com/nao1215/tagtree/internal/store"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <tag-url>",
		Short: "Crawl a tag page and its related tags",
		Long: `Crawl fetches a tag page and recursively follows its alias, parent and
child links. Every branch runs concurrently. Branches that fail are dropped
from the tree and logged; a robots denial or a failure of the start page
aborts the crawl.

The link extractor is picked from the start URL's host. Use --site to choose
one explicitly, or describe a site with CSS selectors in the config file.

Examples:
  # Crawl an AO3 tag
  tagtree crawl https://archiveofourown.org/tags/Victorian

  # Limit recursion and give up after five minutes
  tagtree crawl --max-depth 3 --crawl-timeout 5m https://archiveofourown.org/tags/Victorian

  # Markdown report written to a file, not saved to the database
  tagtree crawl --markdown -o victorian.md --no-save https://archiveofourown.org/tags/Victorian

  # Crawl through a SOCKS5 proxy
  tagtree crawl --proxy 127.0.0.1:9050 https://archiveofourown.org/tags/Victorian

Configuration file (.tagtree) example:
  sites:
    archiveofourown.org:
      cookie: "view_adult=true"
      maxDepth: 4`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().Bool("ignore-robots", false,
		"Do not evaluate robots.txt or page-level robots directives")
	cmd.Flags().StringP("site", "s", "",
		"Link extractor to use (default: detected from the URL host)")

	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Do not follow links below this depth (0 = unlimited)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Duration("crawl-timeout", 0,
		"Deadline for the whole crawl (0 = none)")
	cmd.Flags().Int("fan-out", config.DefaultFanOutLimit,
		"Concurrent visits per link category of a page (0 = unlimited)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header, also used to evaluate robots rules")
	cmd.Flags().StringP("proxy", "x", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum bytes read per page")

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .tagtree in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	cmd.Flags().Bool("no-save", false,
		"Do not store the crawled tree in the tag database")
	cmd.Flags().String("metrics-file", "",
		"Write crawl metrics in the Prometheus text format to this file")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, closer, err := log.New(cmd.ErrOrStderr(), log.Options{
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir returns the --db flag or the XDG data directory.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// buildConfig creates a Config from cobra command flags and the
// configuration file. Flags given explicitly win over site settings.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if len(args) > 0 {
		cfg.StartURL = args[0]
	}
	if cfg.IgnoreRobots, err = flags.GetBool("ignore-robots"); err != nil {
		return nil, err
	}
	if cfg.Site, err = flags.GetString("site"); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.CrawlTimeout, err = flags.GetDuration("crawl-timeout"); err != nil {
		return nil, err
	}
	if cfg.FanOutLimit, err = flags.GetInt("fan-out"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return nil, err
	}
	// log-file is a root flag and is absent when crawl runs on its own.
	cfg.LogFile, _ = flags.GetString("log-file") //nolint:errcheck
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = getDBDir(cmd)

	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// An explicitly given config file must exist; the default locations are
	// optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if u, err := url.Parse(cfg.StartURL); err == nil && u.Host != "" {
		sc := cfg.ForHost(u.Host)
		if !flags.Changed("site") && sc.Extractor != "" {
			cfg.Site = sc.Extractor
		}
		if !flags.Changed("max-depth") && sc.MaxDepth > 0 {
			cfg.MaxDepth = sc.MaxDepth
		}
		if !flags.Changed("user-agent") && sc.UserAgent != "" {
			cfg.UserAgent = sc.UserAgent
		}
	}

	return cfg, nil
}

// runCrawl wires the crawl components, runs the crawl and emits the report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	start, err := url.Parse(cfg.StartURL)
	if err != nil {
		return fmt.Errorf("invalid start URL: %w", err)
	}
	siteCfg := cfg.ForHost(start.Host)

	extractor, err := newExtractor(cfg, start)
	if err != nil {
		return err
	}

	if cfg.ProxyAddress != "" {
		if err := fetch.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return fmt.Errorf("proxy check failed (make sure a SOCKS5 proxy is running at %s): %w",
				cfg.ProxyAddress, err)
		}
	}

	client, err := fetch.NewHTTPClient(fetch.ClientOptions{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		Cookie:       siteCfg.Cookie,
		Headers:      siteCfg.Headers,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	throttle := fetch.NewThrottle()
	policy := robots.NewPolicy(cfg.UserAgent,
		robots.WithHTTPClient(client),
		robots.WithLogger(logger),
		robots.WithCrawlDelayFunc(throttle.SetDelay),
	)
	fetcher := fetch.NewFetcher(client,
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithThrottle(throttle),
		fetch.WithLogger(logger),
	)
	recorder := metrics.NewRecorder()
	engine := crawler.NewEngine(fetcher, policy, extractor,
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithCrawlTimeout(cfg.CrawlTimeout),
		crawler.WithFanOutLimit(cfg.FanOutLimit),
		crawler.WithLogger(logger),
		crawler.WithMetrics(recorder),
	)

	began := time.Now()
	tree, crawlErr := engine.Crawl(ctx, start, !cfg.IgnoreRobots)
	if tree == nil {
		if robots.IsAccessDenied(crawlErr) {
			return fmt.Errorf("crawl refused: %w (use --ignore-robots to override)", crawlErr)
		}
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}

	rep := &report.Report{
		StartURL:  start.String(),
		CrawledAt: began,
		Elapsed:   time.Since(began),
		Partial:   crawlErr != nil,
		Tree:      tree,
	}
	if rep.Partial {
		logger.Warn("crawl interrupted, reporting partial tree", "error", crawlErr, "tags", tree.Size())
	}

	if cfg.SaveToDB {
		// The crawl context may already be cancelled; the collected tree is
		// still stored.
		run, err := saveTree(context.WithoutCancel(ctx), cfg.DBDir, rep.StartURL, tree)
		if err != nil {
			logger.Error("failed to save tree", "error", err)
		} else {
			rep.RunID = run.ID
			logger.Info("tree saved", "run", run.ID, "tags", run.Tags, "links", run.Links)
		}
	}

	if cfg.MetricsFile != "" {
		if err := writeMetrics(recorder, cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if err := outputReport(cfg, rep, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted: %w", crawlErr)
	}
	return nil
}

// newExtractor resolves the link extractor for the start URL.
func newExtractor(cfg *config.Config, start *url.URL) (site.Extractor, error) {
	reg := site.NewRegistry()
	if cfg.SiteConfigs != nil {
		if err := cfg.SiteConfigs.Register(reg); err != nil {
			return nil, err
		}
	}

	name := cfg.Site
	if name == "" {
		detected, ok := reg.Detect(start.Host)
		if !ok {
			return nil, fmt.Errorf("%w for host %q (use --site, available: %s)",
				site.ErrUnknownExtractor, start.Host, strings.Join(reg.Names(), ", "))
		}
		name = detected
	}

	return reg.New(name)
}

func saveTree(ctx context.Context, dbDir, startURL string, tree *model.CrawlResult) (*store.CrawlRun, error) {
	db, err := store.Open(ctx, dbDir, store.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return db.SaveTree(ctx, startURL, tree)
}

func writeMetrics(recorder *metrics.Recorder, path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return recorder.WriteTextfile(path)
}

// outputReport writes the report in the requested format to the report file
// or out.
func outputReport(cfg *config.Config, rep *report.Report, out io.Writer) (err error) {
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		out = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewTextWriter(out)
	}
	_, err = w.Write(rep)
	return err
}
