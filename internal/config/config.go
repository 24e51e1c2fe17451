package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "tagtree"

	// DefaultTimeout bounds a single HTTP request, robots.txt included.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth of 0 follows links without a depth limit.
	DefaultMaxDepth = 0

	// DefaultFanOutLimit of 0 visits all links of a category concurrently.
	DefaultFanOutLimit = 0

	// DefaultUserAgent identifies tagtree in HTTP requests and is the agent
	// robots.txt rules are evaluated for.
	DefaultUserAgent = "tagtree/1.0 (+https://github.com/nao1215/tagtree)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for a crawl.
// It is populated from CLI flags and passed through the application rather
// than kept in global state.
type Config struct {
	// StartURL is the tag page the crawl starts from.
	StartURL string

	// IgnoreRobots disables robots.txt and page-level directive checks.
	IgnoreRobots bool

	// Site names the extractor to use. Empty means detect it from the
	// start URL's host.
	Site string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// CrawlTimeout bounds the whole crawl. Zero means no deadline.
	CrawlTimeout time.Duration

	// MaxDepth stops following links below this depth. Zero means unlimited.
	MaxDepth int

	// FanOutLimit caps concurrent visits per link category. Zero means
	// unlimited.
	FanOutLimit int

	// UserAgent is sent with every request.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// Verbose enables debug log output.
	Verbose bool

	// LogFile, when set, also writes JSON logs to this rotated file.
	LogFile string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// DBDir is the directory holding the tag database.
	// Defaults to the XDG data directory (~/.local/share/tagtree on Linux).
	DBDir string

	// SaveToDB stores the crawled tree in the tag database.
	SaveToDB bool

	// MetricsFile, when set, receives crawl metrics in the Prometheus text
	// format after the crawl.
	MetricsFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .tagtree is searched in the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds the per-site settings loaded from the config file.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxDepth:    DefaultMaxDepth,
		FanOutLimit: DefaultFanOutLimit,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for tagtree.
// On Linux: ~/.local/share/tagtree
// On macOS: ~/Library/Application Support/tagtree
// On Windows: %LOCALAPPDATA%\tagtree
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for tagtree.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	u, err := url.Parse(c.StartURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidStartURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlTimeout < 0 {
		return ErrInvalidCrawlTimeout
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.FanOutLimit < 0 {
		return ErrInvalidFanOutLimit
	}
	if c.UserAgent == "" {
		return ErrEmptyUserAgent
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// ForHost returns the effective site settings for host, or the zero value
// when no configuration file was loaded.
func (c *Config) ForHost(host string) SiteConfig {
	if c.SiteConfigs == nil {
		return SiteConfig{}
	}
	return c.SiteConfigs.GetSiteConfig(host)
}
