// Package profile assembles the profile view of a GitHub account.
//
// [Loader.Load] fetches the user record, the repository list and the starred
// count concurrently. Any of the three failing fails the load; a 404 on the
// user record matches errors.ErrNotFound. Only after the batch succeeds is the
// profile README requested, and its absence is reported through
// [ViewModel.ReadmeStatus] rather than as an error.
package profile

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gitstat/pkg/cache"
	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/integrations/github"
)

// FailureMessage is shown when a profile cannot be loaded for a reason other
// than a missing account.
const FailureMessage = "Unable to load the GitHub profile. Please try again."

// DefaultRepoLimit is the number of repositories kept, most recently updated first.
const DefaultRepoLimit = 6

// ReadmeStatus tells whether the profile README could be loaded.
type ReadmeStatus string

const (
	ReadmeAvailable   ReadmeStatus = "available"
	ReadmeUnavailable ReadmeStatus = "unavailable"
)

// GitHub is the subset of the API client the loader needs.
type GitHub interface {
	User(ctx context.Context, login string) (*github.User, error)
	Repos(ctx context.Context, login string) ([]github.Repo, error)
	StarredCount(ctx context.Context, login string) (int, error)
	Readme(ctx context.Context, login string) (string, error)
}

// ViewModel is everything the profile view renders.
type ViewModel struct {
	User         *github.User  `json:"user"`
	Repositories []github.Repo `json:"repositories"`
	StarredCount int           `json:"starred_count"`
	Readme       string        `json:"readme,omitempty"`
	ReadmeStatus ReadmeStatus  `json:"readme_status"`

	// Cached is set when the view model was served from the cache.
	Cached bool `json:"-"`
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache serves loads from c for ttl under the profile key of the login.
func WithCache(c *cache.TTLCache, ttl time.Duration) Option {
	return func(l *Loader) {
		l.cache = c
		l.ttl = ttl
	}
}

// WithRepoLimit sets how many repositories are kept.
func WithRepoLimit(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.repoLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *log.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loader loads profile view models.
type Loader struct {
	gh        GitHub
	cache     *cache.TTLCache
	ttl       time.Duration
	repoLimit int
	logger    *log.Logger
}

// NewLoader creates a Loader backed by gh.
func NewLoader(gh GitHub, opts ...Option) *Loader {
	l := &Loader{
		gh:        gh,
		repoLimit: DefaultRepoLimit,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the view model for login, from the cache when one is
// configured and holds a fresh entry.
func (l *Loader) Load(ctx context.Context, login string) (*ViewModel, error) {
	if l.cache == nil {
		return l.fetch(ctx, login)
	}
	vm, cached, err := cache.GetOrFetch(ctx, l.cache, cache.Key(cache.KindProfile, login), l.ttl, func(ctx context.Context) (*ViewModel, error) {
		return l.fetch(ctx, login)
	})
	if err != nil {
		return nil, err
	}
	out := *vm
	out.Cached = cached
	return &out, nil
}

// Refresh drops any cached entry for login and loads it again.
func (l *Loader) Refresh(ctx context.Context, login string) (*ViewModel, error) {
	if l.cache != nil {
		if err := l.cache.Invalidate(ctx, cache.Key(cache.KindProfile, login)); err != nil {
			l.logger.Warn("cache invalidate failed", "login", login, "err", err)
		}
	}
	return l.Load(ctx, login)
}

func (l *Loader) fetch(ctx context.Context, login string) (*ViewModel, error) {
	var (
		user    *github.User
		repos   []github.Repo
		starred int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = l.gh.User(gctx, login)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = l.gh.Repos(gctx, login)
		return err
	})
	g.Go(func() error {
		var err error
		starred, err = l.gh.StarredCount(gctx, login)
		return err
	})
	if err := g.Wait(); err != nil {
		l.logger.Debug("profile load failed", "login", login, "err", err)
		return nil, err
	}

	vm := &ViewModel{
		User:         user,
		Repositories: RecentRepos(repos, l.repoLimit),
		StarredCount: starred,
		ReadmeStatus: ReadmeUnavailable,
	}

	readme, err := l.gh.Readme(ctx, login)
	switch {
	case err == nil:
		vm.Readme = readme
		vm.ReadmeStatus = ReadmeAvailable
	case errors.IsAborted(err):
		// a cancelled load must not be cached as "no README"
		return nil, err
	default:
		l.logger.Debug("readme unavailable", "login", login, "err", err)
	}
	return vm, nil
}

// RecentRepos returns a copy of repos sorted by last update, newest first,
// truncated to limit. Repositories updated at the same instant keep their
// original order. limit <= 0 keeps all of them.
func RecentRepos(repos []github.Repo, limit int) []github.Repo {
	out := make([]github.Repo, len(repos))
	copy(out, repos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
