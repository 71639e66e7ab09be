package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gitstat/pkg/integrations/github"
	"github.com/matzehuels/gitstat/pkg/profile"
	"github.com/matzehuels/gitstat/pkg/search"
	"github.com/matzehuels/gitstat/pkg/stats"
)

func strPtr(s string) *string { return &s }

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.Time{}, "—"},
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-50 * time.Hour), "2d ago"},
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "Mar 1, 2025"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(tt.t, now); got != tt.want {
			t.Errorf("formatRelativeTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestDeref(t *testing.T) {
	if got := deref(nil, "—"); got != "—" {
		t.Errorf("deref(nil) = %q", got)
	}
	if got := deref(strPtr(""), "—"); got != "—" {
		t.Errorf("deref(\"\") = %q", got)
	}
	if got := deref(strPtr("Berlin"), "—"); got != "Berlin" {
		t.Errorf("deref(Berlin) = %q", got)
	}
}

func TestRenderProfile(t *testing.T) {
	now := time.Date(2025, 3, 30, 12, 0, 0, 0, time.UTC)
	vm := &profile.ViewModel{
		User: &github.User{
			Login:    "octocat",
			Name:     "The Octocat",
			Bio:      strPtr("A cat with tentacles"),
			Location: strPtr("San Francisco"),
		},
		Repositories: []github.Repo{
			{Name: "Hello-World", Language: strPtr("Go"), Stars: 7, UpdatedAt: now.Add(-2 * time.Hour)},
		},
		StarredCount: 42,
		ReadmeStatus: profile.ReadmeUnavailable,
	}

	var buf bytes.Buffer
	renderProfile(&buf, vm, now, true)
	out := buf.String()

	for _, want := range []string{"octocat", "The Octocat", "A cat with tentacles", "San Francisco", "Hello-World", "Go", "2h ago", "42", noReadmeText} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, iconFresh) {
		t.Error("a fresh load should be marked fresh")
	}
}

func TestRenderProfileNoRepos(t *testing.T) {
	vm := &profile.ViewModel{
		User:         &github.User{Login: "empty"},
		Readme:       "# Hello",
		ReadmeStatus: profile.ReadmeAvailable,
		Cached:       true,
	}

	var buf bytes.Buffer
	renderProfile(&buf, vm, time.Now(), true)
	out := buf.String()

	for _, want := range []string{"No public repositories", "# Hello", iconCached} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderNotFound(t *testing.T) {
	var buf bytes.Buffer
	renderNotFound(&buf, "ghost")
	out := buf.String()
	if !strings.Contains(out, "GitHub user not found.") || !strings.Contains(out, "gitstat search ghost") {
		t.Errorf("unexpected not-found view:\n%s", out)
	}
}

func TestRenderGrid(t *testing.T) {
	// 2025-03-01 is a Saturday
	now := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	days := stats.Contributions(nil, now, stats.Days)

	out := renderGrid(days)
	if got := strings.Count(out, iconCell); got != stats.Days {
		t.Errorf("cells = %d, want %d", got, stats.Days)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// header, a one-cell first week, four full weeks and a one-cell last week
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(lines), out)
	}
	if got := strings.Count(lines[1], iconCell); got != 1 {
		t.Errorf("first week cells = %d, want 1", got)
	}
	if got := strings.Count(lines[2], iconCell); got != 7 {
		t.Errorf("second week cells = %d, want 7", got)
	}
}

func TestRenderGridEmpty(t *testing.T) {
	if out := renderGrid(nil); strings.Contains(out, iconCell) {
		t.Errorf("empty series should render only the header:\n%s", out)
	}
}

func TestRenderChart(t *testing.T) {
	days := []stats.Day{
		{Date: "2025-03-28", Count: 0},
		{Date: "2025-03-29", Count: 1},
		{Date: "2025-03-30", Count: 8},
	}

	lines := strings.Split(strings.TrimRight(renderChart(days), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	want := []int{0, chartWidth / 8, chartWidth}
	for i, line := range lines {
		if got := strings.Count(line, iconBar); got != want[i] {
			t.Errorf("line %d bars = %d, want %d: %q", i, got, want[i], line)
		}
	}
	if !strings.Contains(lines[2], "Mar 30") {
		t.Errorf("chart label: %q", lines[2])
	}
}

func TestRenderChartSmallCountVisible(t *testing.T) {
	days := []stats.Day{{Date: "2025-03-29", Count: 1}, {Date: "2025-03-30", Count: 100}}
	lines := strings.Split(strings.TrimRight(renderChart(days), "\n"), "\n")
	if got := strings.Count(lines[0], iconBar); got != 1 {
		t.Errorf("a non-zero day should get at least one bar, got %d", got)
	}
}

func TestRenderPreviews(t *testing.T) {
	var buf bytes.Buffer
	renderPreviews(&buf, "octo", []search.Preview{
		{Login: "octocat", ProfileURL: "https://github.com/octocat"},
		{Login: "octo-org"},
	})
	out := buf.String()
	if strings.Index(out, "octocat") > strings.Index(out, "octo-org") {
		t.Errorf("previews out of order:\n%s", out)
	}
	if !strings.Contains(out, "gitstat profile octocat") {
		t.Errorf("missing next step:\n%s", out)
	}

	buf.Reset()
	renderPreviews(&buf, "zzz", []search.Preview{})
	if !strings.Contains(buf.String(), `No users found for "zzz"`) {
		t.Errorf("empty result view:\n%s", buf.String())
	}
}
