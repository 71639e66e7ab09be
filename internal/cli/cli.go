// Package cli implements the gitstat command-line interface.
//
// # Commands
//
//   - search: find GitHub accounts, interactively when no query is given
//   - profile: show a user's profile, recent repositories and README
//   - stats: show the activity dashboard
//   - cache: manage the response cache
//
// All commands support --verbose (-v) for debug-level logging and --config
// to point at a settings file.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitstat/pkg/buildinfo"
	"github.com/matzehuels/gitstat/pkg/cache"
	"github.com/matzehuels/gitstat/pkg/clock"
	"github.com/matzehuels/gitstat/pkg/config"
	"github.com/matzehuels/gitstat/pkg/integrations"
	"github.com/matzehuels/gitstat/pkg/integrations/github"
	"github.com/matzehuels/gitstat/pkg/observability"
	"github.com/matzehuels/gitstat/pkg/profile"
	"github.com/matzehuels/gitstat/pkg/stats"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gitstat"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	stderr     io.Writer
	configPath string
	verbose    bool

	cfg     config.Config
	logFile io.WriteCloser
	metrics *observability.Prometheus
	store   cache.Cache
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stderr: w,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "gitstat explores GitHub profiles from the terminal",
		Long:          `gitstat searches GitHub accounts, shows profiles with their most recently updated repositories and README, and derives an activity dashboard. It uses the public, unauthenticated GitHub REST API.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gitstat/config.toml, or $"+config.EnvPath+")")

	root.AddCommand(c.searchCommand())
	root.AddCommand(c.profileCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config and wires logging and metrics.
func (c *CLI) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := parseLevel(cfg.Log.Level)
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	if cfg.Log.File != "" {
		lf, err := newLogFile(cfg.Log)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		c.logFile = lf
		c.Logger.SetOutput(io.MultiWriter(c.stderr, lf))
	}

	if cfg.Metrics.File != "" {
		c.metrics = observability.NewPrometheus()
		c.metrics.Register()
	}

	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// Close flushes metrics and releases the cache store and log file.
func (c *CLI) Close() error {
	if c.metrics != nil {
		if err := c.metrics.WriteTextfile(c.cfg.Metrics.File); err != nil {
			c.Logger.Warn("write metrics", "file", c.cfg.Metrics.File, "err", err)
		}
	}
	if c.store != nil {
		c.store.Close()
	}
	if c.logFile != nil {
		return c.logFile.Close()
	}
	return nil
}

// quiet routes log output to the log file only, for the duration of a
// full-screen program. The returned func restores the previous output.
func (c *CLI) quiet() (restore func()) {
	var w io.Writer = io.Discard
	if c.logFile != nil {
		w = c.logFile
	}
	c.Logger.SetOutput(w)
	return func() {
		if c.logFile != nil {
			c.Logger.SetOutput(io.MultiWriter(c.stderr, c.logFile))
			return
		}
		c.Logger.SetOutput(c.stderr)
	}
}

// =============================================================================
// Service Factory
// =============================================================================

// newGitHub creates an API client from the config.
func (c *CLI) newGitHub() *github.Client {
	return github.NewClient(c.cfg.APIBaseURL,
		integrations.WithHTTPClient(integrations.NewHTTPClientWithTimeout(c.cfg.HTTPTimeout)),
		integrations.WithLogger(c.Logger),
	)
}

// newTTLCache opens the configured store once per process.
func (c *CLI) newTTLCache(ctx context.Context) *cache.TTLCache {
	if c.store == nil {
		c.store = c.openStore(ctx)
	}
	return cache.NewTTL(c.store, cache.WithLogger(c.Logger))
}

// openStore never fails: an unusable backend degrades to an in-memory store.
func (c *CLI) openStore(ctx context.Context) cache.Cache {
	var store cache.Cache
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache()
	case config.BackendMemory:
		store = cache.NewMemoryCache(clock.Real())
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.cfg.Redis.Addr, c.cfg.Redis.DB, c.cfg.Redis.Prefix)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, using memory", "err", err)
			store = cache.NewMemoryCache(clock.Real())
		} else {
			store = rc
		}
	default:
		dir, err := c.cacheDir()
		if err == nil {
			store, err = cache.NewFileCache(dir)
		}
		if err != nil {
			c.Logger.Warn("file cache unavailable, using memory", "err", err)
			store = cache.NewMemoryCache(clock.Real())
		}
	}
	return cache.NewScoped(store, scopeFor(c.cfg.APIBaseURL))
}

func (c *CLI) newProfileLoader(ctx context.Context) *profile.Loader {
	return profile.NewLoader(c.newGitHub(),
		profile.WithCache(c.newTTLCache(ctx), c.cfg.Cache.TTL),
		profile.WithRepoLimit(c.cfg.Profile.RepoLimit),
		profile.WithLogger(c.Logger),
	)
}

func (c *CLI) newStatsService(ctx context.Context) *stats.Service {
	return stats.NewService(c.newGitHub(),
		stats.WithCache(c.newTTLCache(ctx), c.cfg.Cache.TTL),
		stats.WithLogger(c.Logger),
	)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/gitstat/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// scopeFor returns the cache key prefix for an API base URL. The public API
// is unscoped so keys keep their documented github-{kind}-{login} form.
func scopeFor(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || baseURL == github.DefaultBaseURL || u.Host == "api.github.com" {
		return ""
	}
	return u.Host + ":"
}
