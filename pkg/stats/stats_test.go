package stats

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/gitstat/pkg/cache"
	"github.com/matzehuels/gitstat/pkg/clock"
	gserrors "github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/integrations/github"
)

var now = time.Date(2025, 3, 30, 15, 0, 0, 0, time.UTC)

func TestLevel(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{-1, 0}, {0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {6, 3}, {7, 4}, {40, 4},
	}
	for _, tt := range tests {
		if got := Level(tt.count); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}

func TestContributions(t *testing.T) {
	events := []github.Event{
		{ID: "1", CreatedAt: now.Add(-time.Hour)},
		{ID: "2", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "3", CreatedAt: now.AddDate(0, 0, -29)},
		{ID: "4", CreatedAt: now.AddDate(0, 0, -30)}, // before the window
		{ID: "5", CreatedAt: now.AddDate(0, 0, 1)},   // after the window
	}

	days := Contributions(events, now, Days)
	if len(days) != Days {
		t.Fatalf("len = %d, want %d", len(days), Days)
	}
	if days[0].Date != "2025-03-01" || days[Days-1].Date != "2025-03-30" {
		t.Errorf("range = %s .. %s", days[0].Date, days[Days-1].Date)
	}
	if days[Days-1].Count != 2 {
		t.Errorf("today = %d, want 2", days[Days-1].Count)
	}
	if days[0].Count != 1 {
		t.Errorf("first day = %d, want 1", days[0].Count)
	}
	total := 0
	for _, d := range days {
		total += d.Count
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if days[Days-1].Weekday != time.Sunday {
		t.Errorf("weekday = %v, want Sunday", days[Days-1].Weekday)
	}
}

func TestContributionsUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	local := time.Date(2025, 3, 31, 5, 0, 0, 0, loc) // 2025-03-30 19:00 UTC

	days := Contributions(nil, local, 1)
	if days[0].Date != "2025-03-30" {
		t.Errorf("date = %s, want the UTC date", days[0].Date)
	}
	if days[0].Count != 0 {
		t.Errorf("no events should give zero, got %d", days[0].Count)
	}
}

func TestContributionsEmpty(t *testing.T) {
	if got := Contributions(nil, now, 0); got == nil || len(got) != 0 {
		t.Errorf("Contributions(0) = %#v", got)
	}
}

func TestCompute(t *testing.T) {
	user := &github.User{ID: 1, Login: "octocat", PublicRepos: 8}
	repos := []github.Repo{
		{ID: 1, Name: "a", Stars: 10, Forks: 2},
		{ID: 2, Name: "b", Stars: 5, Forks: 1},
	}

	s := Compute(user, repos, nil, now)
	want := Stats{
		Login:        "octocat",
		TotalCommits: 80,
		TotalPRs:     6,
		TotalIssues:  16,
		TotalRepos:   8,
		TotalStars:   15,
		TotalForks:   3,
	}
	if s.Login != want.Login || s.TotalCommits != want.TotalCommits || s.TotalPRs != want.TotalPRs ||
		s.TotalIssues != want.TotalIssues || s.TotalRepos != want.TotalRepos ||
		s.TotalStars != want.TotalStars || s.TotalForks != want.TotalForks {
		t.Errorf("Compute() = %+v, want %+v", *s, want)
	}
	if len(s.Contributions) != Days {
		t.Errorf("contributions = %d", len(s.Contributions))
	}
}

type fakeGitHub struct {
	users     atomic.Int32
	userErr   error
	eventsErr error
}

func (f *fakeGitHub) User(context.Context, string) (*github.User, error) {
	f.users.Add(1)
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &github.User{ID: 1, Login: "octocat", PublicRepos: 3}, nil
}

func (f *fakeGitHub) Repos(context.Context, string) ([]github.Repo, error) {
	return []github.Repo{{ID: 1, Name: "a", Stars: 4}}, nil
}

func (f *fakeGitHub) PublicEvents(context.Context, string) ([]github.Event, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return []github.Event{{ID: "1", CreatedAt: now}}, nil
}

func newTestService(f *fakeGitHub) (*Service, *cache.MemoryCache, *clock.Mock) {
	clk := clock.NewMock(now)
	store := cache.NewMemoryCache(clk)
	ttl := cache.NewTTL(store, cache.WithClock(clk))
	return NewService(f, WithCache(ttl, DefaultTTL), WithClock(clk)), store, clk
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	f := &fakeGitHub{}
	svc, store, clk := newTestService(f)

	s, err := svc.Load(ctx, "octocat", false)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if s.Cached || s.TotalStars != 4 || s.Contributions[Days-1].Count != 1 {
		t.Errorf("stats = %+v", s)
	}
	if _, ok, _ := store.Get(ctx, "github-stats-octocat"); !ok {
		t.Error("payload should be stored under github-stats-octocat")
	}
	if _, ok, _ := store.Get(ctx, "github-stats-octocat-time"); !ok {
		t.Error("write time should be stored under github-stats-octocat-time")
	}

	clk.Advance(10 * time.Minute)
	s, err = svc.Load(ctx, "octocat", false)
	if err != nil || !s.Cached {
		t.Errorf("read at +10m: cached %v, err %v", s != nil && s.Cached, err)
	}
	if n := f.users.Load(); n != 1 {
		t.Errorf("user fetched %d times within ttl", n)
	}

	clk.Advance(6 * time.Minute)
	s, err = svc.Load(ctx, "octocat", false)
	if err != nil || s.Cached {
		t.Errorf("read at +16m: cached %v, err %v", s != nil && s.Cached, err)
	}
	if n := f.users.Load(); n != 2 {
		t.Errorf("stale read should refetch, user calls = %d", n)
	}
}

func TestService_Refresh(t *testing.T) {
	ctx := context.Background()
	f := &fakeGitHub{}
	svc, _, _ := newTestService(f)

	svc.Load(ctx, "octocat", false)
	s, err := svc.Load(ctx, "octocat", true)
	if err != nil || s.Cached {
		t.Fatalf("refresh: cached %v, err %v", s != nil && s.Cached, err)
	}
	if n := f.users.Load(); n != 2 {
		t.Errorf("user calls = %d, want 2", n)
	}
}

func TestService_EventsFailureDegrades(t *testing.T) {
	f := &fakeGitHub{eventsErr: &gserrors.HTTPError{Status: 500}}
	svc := NewService(f, WithClock(clock.NewMock(now)))

	s, err := svc.Load(context.Background(), "octocat", false)
	if err != nil {
		t.Fatalf("events failure should not fail the load: %v", err)
	}
	for _, d := range s.Contributions {
		if d.Count != 0 {
			t.Fatalf("expected zero-filled series, got %+v", d)
		}
	}
	if len(s.Contributions) != Days {
		t.Errorf("contributions = %d", len(s.Contributions))
	}
}

func TestService_UserFailureNotCached(t *testing.T) {
	ctx := context.Background()
	f := &fakeGitHub{userErr: &gserrors.HTTPError{Status: 429}}
	svc, store, _ := newTestService(f)

	_, err := svc.Load(ctx, "octocat", false)
	if !errors.Is(err, gserrors.ErrRateLimited) {
		t.Fatalf("error = %v, want rate limited", err)
	}
	if store.Len() != 0 {
		t.Errorf("failed load wrote %d cache entries", store.Len())
	}
}
