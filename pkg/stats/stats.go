// Package stats derives the activity dashboard of a GitHub account.
//
// Commit, pull request and issue totals are estimates from the public
// repository count; the unauthenticated API offers no exact figures. Stars and
// forks are summed over the listed repositories and the contribution series
// counts public events per day.
package stats

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gitstat/pkg/cache"
	"github.com/matzehuels/gitstat/pkg/clock"
	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/integrations/github"
)

const (
	// Days is the length of the contribution series.
	Days = 30

	// DefaultTTL is how long computed stats are served from the cache.
	DefaultTTL = 15 * time.Minute

	// FailureMessage is shown when the dashboard cannot be loaded.
	FailureMessage = "Unable to load GitHub activity. Rate limit may have been exceeded."

	dateLayout = "2006-01-02"
)

// Estimate multipliers applied to the public repository count.
const (
	commitsPerRepo = 10
	prsPerRepo     = 0.8
	issuesPerRepo  = 2
)

// Day is one entry of the contribution series.
type Day struct {
	Date    string       `json:"date"`
	Count   int          `json:"contribution_count"`
	Weekday time.Weekday `json:"weekday"`
}

// Stats is the dashboard payload.
type Stats struct {
	Login         string `json:"login"`
	TotalCommits  int    `json:"total_commits"`
	TotalPRs      int    `json:"total_prs"`
	TotalIssues   int    `json:"total_issues"`
	TotalRepos    int    `json:"total_repos"`
	TotalStars    int    `json:"total_stars"`
	TotalForks    int    `json:"total_forks"`
	Contributions []Day  `json:"contributions"`

	// Cached is set when the stats were served from the cache.
	Cached bool `json:"-"`
}

// Level buckets a daily count for the heat-map: 0, 1-2, 3-4, 5-6, 7+.
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count < 3:
		return 1
	case count < 5:
		return 2
	case count < 7:
		return 3
	}
	return 4
}

// Compute derives the dashboard from already fetched records. now anchors the
// contribution series, which ends on now's UTC date.
func Compute(user *github.User, repos []github.Repo, events []github.Event, now time.Time) *Stats {
	s := &Stats{
		Login:         user.Login,
		TotalRepos:    user.PublicRepos,
		TotalCommits:  user.PublicRepos * commitsPerRepo,
		TotalPRs:      int(math.Floor(float64(user.PublicRepos) * prsPerRepo)),
		TotalIssues:   user.PublicRepos * issuesPerRepo,
		Contributions: Contributions(events, now, Days),
	}
	for _, r := range repos {
		s.TotalStars += r.Stars
		s.TotalForks += r.Forks
	}
	return s
}

// Contributions counts events per UTC day over the days consecutive days
// ending on now's date, oldest first. Events outside the range are ignored.
func Contributions(events []github.Event, now time.Time, days int) []Day {
	if days <= 0 {
		return []Day{}
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := today.AddDate(0, 0, -(days - 1))

	out := make([]Day, days)
	index := make(map[string]int, days)
	for i := range out {
		d := first.AddDate(0, 0, i)
		out[i] = Day{Date: d.Format(dateLayout), Weekday: d.Weekday()}
		index[out[i].Date] = i
	}
	for _, e := range events {
		if i, ok := index[e.CreatedAt.UTC().Format(dateLayout)]; ok {
			out[i].Count++
		}
	}
	return out
}

// GitHub is the subset of the API client the service needs.
type GitHub interface {
	User(ctx context.Context, login string) (*github.User, error)
	Repos(ctx context.Context, login string) ([]github.Repo, error)
	PublicEvents(ctx context.Context, login string) ([]github.Event, error)
}

// Option configures a Service.
type Option func(*Service)

// WithCache serves loads from c for ttl.
func WithCache(c *cache.TTLCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock sets the clock anchoring the contribution series.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service loads dashboards.
type Service struct {
	gh     GitHub
	cache  *cache.TTLCache
	ttl    time.Duration
	clock  clock.Clock
	logger *log.Logger
}

// NewService creates a Service backed by gh.
func NewService(gh GitHub, opts ...Option) *Service {
	s := &Service{
		gh:     gh,
		ttl:    DefaultTTL,
		clock:  clock.Real(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the dashboard for login. With refresh set, any cached entry is
// dropped first.
func (s *Service) Load(ctx context.Context, login string, refresh bool) (*Stats, error) {
	if s.cache == nil {
		return s.compute(ctx, login)
	}
	key := cache.Key(cache.KindStats, login)
	if refresh {
		if err := s.cache.Invalidate(ctx, key); err != nil {
			s.logger.Warn("cache invalidate failed", "key", key, "err", err)
		}
	}
	st, cached, err := cache.GetOrFetch(ctx, s.cache, key, s.ttl, func(ctx context.Context) (*Stats, error) {
		return s.compute(ctx, login)
	})
	if err != nil {
		return nil, err
	}
	out := *st
	out.Cached = cached
	return &out, nil
}

func (s *Service) compute(ctx context.Context, login string) (*Stats, error) {
	var (
		user   *github.User
		repos  []github.Repo
		events []github.Event
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.gh.User(gctx, login)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = s.gh.Repos(gctx, login)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.gh.PublicEvents(gctx, login)
		if err != nil && !errors.IsAborted(err) {
			// secondary: render an empty series instead of failing
			s.logger.Debug("public events unavailable", "login", login, "err", err)
			events = nil
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Compute(user, repos, events, s.clock.Now()), nil
}
