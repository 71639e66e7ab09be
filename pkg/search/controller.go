// Package search implements the debounced user search behind the search box.
//
// A [Controller] turns a stream of text edits into at most one request per
// settle window. Every edit bumps a generation counter, stops the pending
// timer and cancels the in-flight request; a response is applied only when its
// generation is still current, so the displayed results always belong to the
// most recent query.
//
//	Idle -> Scheduled -> InFlight -> Resolved | Aborted | Failed
//
// Consumers wait on [Controller.Changes] and read [Controller.Snapshot].
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitstat/pkg/clock"
	"github.com/matzehuels/gitstat/pkg/errors"
	"github.com/matzehuels/gitstat/pkg/integrations/github"
	"github.com/matzehuels/gitstat/pkg/observability"
)

const (
	// DefaultWindow is the settle window after the last edit.
	DefaultWindow = 300 * time.Millisecond

	// DefaultPageSize caps the number of results requested.
	DefaultPageSize = 5

	// FailureMessage is shown when a current search fails.
	FailureMessage = "Failed to fetch users. Please try again."
)

// Searcher issues the user search request.
type Searcher interface {
	SearchUsers(ctx context.Context, query string, perPage int) (*github.SearchResponse, error)
}

// State is the lifecycle state of the current query.
type State int

const (
	Idle State = iota
	Scheduled
	InFlight
	Resolved
	Aborted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case InFlight:
		return "in-flight"
	case Resolved:
		return "resolved"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Text       string
	State      State
	Generation uint64
	Results    []Preview
	Err        error  // set only in Failed
	Message    string // user-facing text for Err
}

// Option configures a Controller.
type Option func(*Controller)

// WithWindow sets the settle window.
func WithWindow(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.window = d
		}
	}
}

// WithPageSize sets the number of results requested per search.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock sets the clock driving the settle timer.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller debounces text edits into search requests.
// All methods are safe for concurrent use.
type Controller struct {
	searcher Searcher
	window   time.Duration
	pageSize int
	clock    clock.Clock
	logger   *log.Logger

	base context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	changes chan struct{}

	mu      sync.Mutex
	text    string
	state   State
	gen     uint64
	results []Preview
	err     error
	timer   clock.Timer
	cancel  context.CancelFunc
	closed  bool
}

// New creates an idle Controller.
func New(searcher Searcher, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		window:   DefaultWindow,
		pageSize: DefaultPageSize,
		clock:    clock.Real(),
		logger:   log.Default(),
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.base, c.stop = context.WithCancel(context.Background())
	return c
}

// Changes signals that the snapshot may have changed. Signals coalesce, so a
// receiver must read [Controller.Snapshot] after each one. The channel is
// closed by [Controller.Close].
func (c *Controller) Changes() <-chan struct{} { return c.changes }

// SetText records an edit of the search text. Any scheduled or in-flight
// search is superseded. Blank text clears the results and returns to Idle;
// anything else arms the settle timer. Setting the current text again is not
// an edit and does nothing.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || (text == c.text && c.gen > 0) {
		return
	}
	c.supersedeLocked()
	c.gen++
	c.text = text
	c.err = nil

	if strings.TrimSpace(text) == "" {
		c.results = nil
		c.state = Idle
	} else {
		gen := c.gen
		c.state = Scheduled
		c.timer = c.clock.AfterFunc(c.window, func() { c.fire(gen) })
	}
	c.notifyLocked()
}

// Retry re-issues the current text immediately. It only applies after a
// failed or aborted search and reports whether a request was issued.
func (c *Controller) Retry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || (c.state != Failed && c.state != Aborted) || strings.TrimSpace(c.text) == "" {
		return false
	}
	c.gen++
	c.err = nil
	c.issueLocked(c.gen)
	c.notifyLocked()
	return true
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Text:       c.text,
		State:      c.state,
		Generation: c.gen,
		Err:        c.err,
	}
	if c.results != nil {
		s.Results = append([]Preview(nil), c.results...)
	}
	if c.state == Failed {
		s.Message = FailureMessage
	}
	return s
}

// Close stops the settle timer, cancels the in-flight request and waits for
// it to return. Later edits are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.stop()
	c.wg.Wait()
	close(c.changes)
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen || c.state != Scheduled {
		return
	}
	c.timer = nil
	c.issueLocked(gen)
	c.notifyLocked()
}

func (c *Controller) issueLocked(gen uint64) {
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.state = InFlight

	observability.Search().OnSearchIssued(ctx, gen)
	c.logger.Debug("search issued", "query", c.text, "generation", gen)

	c.wg.Add(1)
	go c.run(ctx, gen, c.text)
}

func (c *Controller) run(ctx context.Context, gen uint64, text string) {
	defer c.wg.Done()

	start := c.clock.Now()
	resp, err := c.searcher.SearchUsers(ctx, text, c.pageSize)
	c.complete(ctx, gen, resp, err, c.clock.Now().Sub(start))
}

func (c *Controller) complete(ctx context.Context, gen uint64, resp *github.SearchResponse, err error, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		c.logger.Debug("dropping superseded search result", "generation", gen, "current", c.gen)
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	switch {
	case err == nil:
		c.state = Resolved
		c.results = Project(resp, c.pageSize)
		c.err = nil
	case errors.IsAborted(err):
		c.state = Aborted
		c.err = nil
	default:
		c.state = Failed
		c.results = nil
		c.err = err
		c.logger.Warn("search failed", "query", c.text, "err", err)
	}

	observability.Search().OnSearchCompleted(ctx, gen, len(c.results), d, err)
	c.notifyLocked()
}

// supersedeLocked invalidates the scheduled or in-flight search, if any.
func (c *Controller) supersedeLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state == Scheduled || c.state == InFlight {
		observability.Search().OnSearchSuperseded(c.base, c.gen)
	}
}

func (c *Controller) notifyLocked() {
	if c.closed {
		return
	}
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
