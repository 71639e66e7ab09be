package search

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/gitstat/pkg/clock"
	gserrors "github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/integrations/github"
)

// fakeSearcher answers with one item per letter of the query. Calls block
// while gated is set until release is called with their query.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	sizes   []int
	fail    error
	gated   bool
	gates   map[string]chan struct{}
}

func (f *fakeSearcher) SearchUsers(ctx context.Context, query string, perPage int) (*github.SearchResponse, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.sizes = append(f.sizes, perPage)
	fail := f.fail
	var gate chan struct{}
	if f.gated {
		gate = make(chan struct{})
		if f.gates == nil {
			f.gates = make(map[string]chan struct{})
		}
		f.gates[query] = gate
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail != nil {
		return nil, fail
	}
	resp := &github.SearchResponse{TotalCount: len(query)}
	for i, r := range query {
		resp.Items = append(resp.Items, github.SearchItem{ID: int64(i + 1), Login: fmt.Sprintf("%s-%c", query, r)})
	}
	return resp, nil
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// release unblocks the call for query once it has been issued. Calls are
// keyed by query because request goroutines may start in any order.
func (f *fakeSearcher) release(t *testing.T, query string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		if gate, ok := f.gates[query]; ok {
			close(gate)
			delete(f.gates, query)
			f.mu.Unlock()
			return
		}
		f.mu.Unlock()
		if time.Now().After(deadline) {
			t.Fatalf("call for %q was never issued", query)
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestController(f *fakeSearcher) (*Controller, *clock.Mock) {
	clk := clock.NewMock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(f, WithClock(clk)), clk
}

func waitFor(t *testing.T, c *Controller, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		s := c.Snapshot()
		if cond(s) {
			return s
		}
		select {
		case <-c.Changes():
		case <-timeout:
			t.Fatalf("timed out waiting for %s; last snapshot %+v", what, s)
		}
	}
}

func resolved(s Snapshot) bool { return s.State == Resolved }

func logins(ps []Preview) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Login
	}
	return out
}

func TestController_OneCallPerSettleWindow(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)
	defer c.Close()

	for _, text := range []string{"o", "oc", "oct", "octo"} {
		c.SetText(text)
		if s := c.Snapshot(); s.State != Scheduled {
			t.Fatalf("after %q state = %v, want scheduled", text, s.State)
		}
		clk.Advance(100 * time.Millisecond)
	}
	if clk.Pending() != 1 {
		t.Errorf("pending timers = %d, want 1", clk.Pending())
	}

	clk.Advance(199 * time.Millisecond)
	if n := len(f.calls()); n != 0 {
		t.Fatalf("%d calls before the window settled", n)
	}

	clk.Advance(time.Millisecond)
	s := waitFor(t, c, "resolved", resolved)

	calls := f.calls()
	if len(calls) != 1 || calls[0] != "octo" {
		t.Errorf("calls = %v, want [octo]", calls)
	}
	if f.sizes[0] != DefaultPageSize {
		t.Errorf("page size = %d, want %d", f.sizes[0], DefaultPageSize)
	}
	if s.Text != "octo" || len(s.Results) != 4 {
		t.Errorf("snapshot = %+v", s)
	}
}

func TestController_PreservesRanking(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)
	defer c.Close()

	c.SetText("abc")
	clk.Advance(DefaultWindow)
	s := waitFor(t, c, "resolved", resolved)

	got := logins(s.Results)
	want := []string{"abc-a", "abc-b", "abc-c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("results = %v, want %v", got, want)
		}
	}
}

func TestController_WindowOption(t *testing.T) {
	f := &fakeSearcher{}
	clk := clock.NewMock(time.Unix(0, 0))
	c := New(f, WithClock(clk), WithWindow(time.Second), WithPageSize(2))
	defer c.Close()

	c.SetText("octo")
	clk.Advance(999 * time.Millisecond)
	if c.Snapshot().State != Scheduled {
		t.Fatal("search fired before the configured window")
	}
	clk.Advance(time.Millisecond)
	s := waitFor(t, c, "resolved", resolved)
	if len(s.Results) != 2 {
		t.Errorf("results = %d, want page size 2", len(s.Results))
	}
}

func TestController_SupersededResponseDropped(t *testing.T) {
	f := &fakeSearcher{gated: true}
	c, clk := newTestController(f)

	c.SetText("oc")
	clk.Advance(DefaultWindow)
	if s := c.Snapshot(); s.State != InFlight {
		t.Fatalf("state = %v, want in-flight", s.State)
	}

	c.SetText("octo")
	clk.Advance(DefaultWindow)

	// the newer request completes first
	f.release(t, "octo")
	s := waitFor(t, c, "resolved", resolved)
	if s.Text != "octo" {
		t.Fatalf("text = %q", s.Text)
	}

	// the superseded one arrives late and must not replace the results
	f.release(t, "oc")
	c.Close()

	s = c.Snapshot()
	if s.State != Resolved || len(s.Results) != 4 || s.Results[0].Login != "octo-o" {
		t.Errorf("stale response leaked into results: %+v", s)
	}
}

func TestController_SupersededFailureDropped(t *testing.T) {
	f := &fakeSearcher{gated: true, fail: fmt.Errorf("%w: reset", gserrors.ErrNetwork)}
	c, clk := newTestController(f)

	c.SetText("oc")
	clk.Advance(DefaultWindow)
	c.SetText("octo")

	f.release(t, "oc")
	c.Close()

	s := c.Snapshot()
	if s.State == Failed || s.Err != nil || s.Message != "" {
		t.Errorf("superseded failure surfaced: %+v", s)
	}
}

func TestController_CancelsInFlight(t *testing.T) {
	started := make(chan context.Context, 1)
	s := searcherFunc(func(ctx context.Context, _ string, _ int) (*github.SearchResponse, error) {
		started <- ctx
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", gserrors.ErrAborted, ctx.Err())
	})
	clk := clock.NewMock(time.Unix(0, 0))
	c := New(s, WithClock(clk))
	defer c.Close()

	c.SetText("oc")
	clk.Advance(DefaultWindow)
	ctx := <-started

	c.SetText("oct")
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled by the edit")
	}
	if st := c.Snapshot().State; st != Scheduled {
		t.Errorf("state = %v, want scheduled", st)
	}
}

func TestController_BlankTextIsIdle(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)
	defer c.Close()

	c.SetText("octo")
	clk.Advance(DefaultWindow)
	waitFor(t, c, "resolved", resolved)

	c.SetText("   ")
	s := c.Snapshot()
	if s.State != Idle || len(s.Results) != 0 {
		t.Errorf("snapshot = %+v, want idle with no results", s)
	}
	if clk.Pending() != 0 {
		t.Errorf("blank text armed a timer")
	}

	clk.Advance(time.Hour)
	if n := len(f.calls()); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestController_EditCancelsPendingTimer(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)
	defer c.Close()

	c.SetText("octo")
	clk.Advance(200 * time.Millisecond)
	c.SetText("")
	clk.Advance(time.Second)

	if n := len(f.calls()); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestController_FailureAndRetry(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)
	defer c.Close()

	c.SetText("octo")
	clk.Advance(DefaultWindow)
	waitFor(t, c, "resolved", resolved)

	f.mu.Lock()
	f.fail = &gserrors.HTTPError{Status: 503}
	f.mu.Unlock()

	c.SetText("octoc")
	clk.Advance(DefaultWindow)
	s := waitFor(t, c, "failed", func(s Snapshot) bool { return s.State == Failed })
	if s.Message != FailureMessage {
		t.Errorf("Message = %q", s.Message)
	}
	if len(s.Results) != 0 {
		t.Errorf("failure should clear results, got %v", logins(s.Results))
	}
	if !gserrors.IsRetryable(s.Err) {
		t.Errorf("Err = %v, want retryable", s.Err)
	}

	f.mu.Lock()
	f.fail = nil
	f.mu.Unlock()

	if !c.Retry() {
		t.Fatal("Retry() should issue a request after failure")
	}
	s = waitFor(t, c, "resolved", resolved)
	if s.Message != "" || s.Err != nil || len(s.Results) != 5 {
		t.Errorf("after retry snapshot = %+v", s)
	}
	if calls := f.calls(); len(calls) != 3 || calls[2] != "octoc" {
		t.Errorf("calls = %v", calls)
	}
}

func TestController_RetryOnlyAfterFailure(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)
	defer c.Close()

	if c.Retry() {
		t.Error("Retry() from idle should do nothing")
	}
	c.SetText("octo")
	if c.Retry() {
		t.Error("Retry() while scheduled should do nothing")
	}
	clk.Advance(DefaultWindow)
	waitFor(t, c, "resolved", resolved)
	if c.Retry() {
		t.Error("Retry() after success should do nothing")
	}
}

func TestController_SameTextIsNotAnEdit(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)
	defer c.Close()

	c.SetText("octo")
	clk.Advance(DefaultWindow)
	waitFor(t, c, "resolved", resolved)
	gen := c.Snapshot().Generation

	c.SetText("octo")
	if s := c.Snapshot(); s.Generation != gen || s.State != Resolved {
		t.Errorf("repeated text changed state: %+v", s)
	}
}

func TestController_Close(t *testing.T) {
	f := &fakeSearcher{}
	c, clk := newTestController(f)

	c.SetText("octo")
	c.Close()
	clk.Advance(time.Second)
	c.SetText("other")

	if n := len(f.calls()); n != 0 {
		t.Errorf("calls after Close = %d", n)
	}
	if _, ok := <-c.Changes(); ok {
		// drain the buffered signal, then expect closure
		if _, ok := <-c.Changes(); ok {
			t.Error("Changes() should be closed")
		}
	}
	c.Close()
}

func TestStateString(t *testing.T) {
	want := map[State]string{
		Idle: "idle", Scheduled: "scheduled", InFlight: "in-flight",
		Resolved: "resolved", Aborted: "aborted", Failed: "failed", State(99): "unknown",
	}
	for s, name := range want {
		if s.String() != name {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), name)
		}
	}
}

type searcherFunc func(ctx context.Context, query string, perPage int) (*github.SearchResponse, error)

func (f searcherFunc) SearchUsers(ctx context.Context, query string, perPage int) (*github.SearchResponse, error) {
	return f(ctx, query, perPage)
}
