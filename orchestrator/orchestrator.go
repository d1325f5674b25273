// Package orchestrator drives a paginated, searchable item list on the client side.
//
// An Orchestrator owns the list state (items, search term, totals, loading flags)
// and issues page requests through a Fetcher. At most one request is in flight: a
// newer request cancels the older one and the older result, should it still
// arrive, is discarded. Equivalent requests repeated within a short window are
// dropped without reaching the network.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/signature"
)

const (
	DefaultPageSize      = 50
	DefaultInitialWindow = 2 * time.Second
	DefaultPageWindow    = 500 * time.Millisecond
)

// Fetcher loads one page of items. It must honor ctx cancellation.
type Fetcher interface {
	FetchItems(ctx context.Context, q item.Query) (item.Page, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, q item.Query) (item.Page, error)

func (f FetcherFunc) FetchItems(ctx context.Context, q item.Query) (item.Page, error) {
	return f(ctx, q)
}

// State is a snapshot of the list.
type State struct {
	Items       []item.Item
	SearchQuery string
	TotalCount  int
	HasMore     bool
	Loading     bool
	// IsResetting is true while a request that will replace Items is running.
	IsResetting bool
	// ResetToken increases every time Items is replaced rather than appended to.
	ResetToken uint64
	InFlight   *signature.Signature
}

func (s State) clone() State {
	out := s
	out.Items = append([]item.Item(nil), s.Items...)
	if s.InFlight != nil {
		sig := *s.InFlight
		out.InFlight = &sig
	}
	return out
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPageSize sets the number of items requested per page.
func WithPageSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithDedupWindows sets how long an equivalent request is suppressed: initial for
// first-page requests, page for later pages.
func WithDedupWindows(initial, page time.Duration) Option {
	return func(o *Orchestrator) {
		o.initialWindow = initial
		o.pageWindow = page
	}
}

// WithClock overrides the time source used for deduplication.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger for fetch failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger.With().Str("component", "orchestrator").Logger()
	}
}

// WithListener registers fn to receive a snapshot after every state transition.
// fn runs outside the orchestrator lock, on the goroutine that caused the change.
func WithListener(fn func(State)) Option {
	return func(o *Orchestrator) {
		o.listener = fn
	}
}

type request struct {
	sig    signature.Signature
	cancel context.CancelFunc
}

// Orchestrator is safe for concurrent use. Its methods block until the request they
// issued completes, is superseded, or is skipped.
type Orchestrator struct {
	fetcher       Fetcher
	pageSize      int
	initialWindow time.Duration
	pageWindow    time.Duration
	now           func() time.Time
	logger        zerolog.Logger
	listener      func(State)

	mu          sync.Mutex
	state       State
	initialized bool
	inFlight    *request
	ledger      *signature.Ledger
}

// New returns an orchestrator with an empty list.
func New(fetcher Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:       fetcher,
		pageSize:      DefaultPageSize,
		initialWindow: DefaultInitialWindow,
		pageWindow:    DefaultPageWindow,
		now:           time.Now,
		logger:        zerolog.Nop(),
		state:         State{Items: []item.Item{}, HasMore: true},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.ledger = signature.NewLedger(max(o.initialWindow, o.pageWindow), o.now)
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// PageSize returns the number of items requested per page.
func (o *Orchestrator) PageSize() int {
	return o.pageSize
}

// Initialize loads the first unfiltered page. Only the first call does anything.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	if o.initialized {
		o.mu.Unlock()
		return nil
	}
	o.initialized = true
	return o.issueLocked(ctx, "", 0, false)
}

// SetSearch replaces the search term and loads the first page for it.
// Debouncing keystrokes is up to the caller.
func (o *Orchestrator) SetSearch(ctx context.Context, term string) error {
	o.mu.Lock()
	o.state.SearchQuery = term
	return o.issueLocked(ctx, term, 0, false)
}

// LoadMore appends the next page for the current search. It does nothing while a
// request is loading or once the last page has been seen.
func (o *Orchestrator) LoadMore(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Loading || !o.state.HasMore {
		o.mu.Unlock()
		return nil
	}
	return o.issueLocked(ctx, o.state.SearchQuery, len(o.state.Items), true)
}

// issueLocked is called with o.mu held and releases it.
func (o *Orchestrator) issueLocked(ctx context.Context, search string, offset int, appendPage bool) error {
	sig := signature.Signature{Search: search, Limit: o.pageSize, Offset: offset, Append: appendPage}

	window := o.pageWindow
	if offset == 0 {
		window = o.initialWindow
	}
	if o.ledger.Recent(sig, window) {
		o.mu.Unlock()
		o.logger.Debug().Str("signature", sig.String()).Msg("duplicate request skipped")
		return nil
	}
	if o.inFlight != nil && o.inFlight.sig == sig {
		o.mu.Unlock()
		return nil
	}

	if o.inFlight != nil {
		// a cancelled request never committed, so it must not suppress a retry
		o.inFlight.cancel()
		o.ledger.Forget(o.inFlight.sig)
	}
	reqCtx, cancel := context.WithCancel(ctx)
	req := &request{sig: sig, cancel: cancel}
	o.inFlight = req
	o.ledger.Record(sig)

	if !appendPage {
		o.state.IsResetting = true
	}
	o.state.Loading = true
	o.state.InFlight = &sig
	snap := o.state.clone()
	o.mu.Unlock()

	o.notify(snap)
	return o.execute(reqCtx, req)
}

func (o *Orchestrator) execute(ctx context.Context, req *request) error {
	sig := req.sig
	page, err := o.fetcher.FetchItems(ctx, item.Query{Search: sig.Search, Offset: sig.Offset, Limit: sig.Limit})
	cancelled := err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled)
	req.cancel()

	o.mu.Lock()
	if o.inFlight != req {
		// superseded: the newer request owns the state
		o.mu.Unlock()
		o.logger.Debug().Str("signature", sig.String()).Msg("superseded response discarded")
		return nil
	}
	o.inFlight = nil
	o.state.InFlight = nil

	var result error
	switch {
	case err == nil:
		o.ledger.Record(sig)
		o.commitLocked(sig, page)
	case cancelled:
		o.ledger.Forget(sig)
		o.logger.Debug().Str("signature", sig.String()).Msg("request cancelled")
	default:
		o.ledger.Record(sig)
		o.failLocked(sig)
		result = err
	}

	o.state.Loading = false
	if !sig.Append {
		o.state.IsResetting = false
	}
	snap := o.state.clone()
	o.mu.Unlock()

	if result != nil {
		o.logger.Error().Err(result).Str("search", sig.Search).Int("offset", sig.Offset).Msg("failed to fetch items")
	}
	o.notify(snap)
	return result
}

func (o *Orchestrator) commitLocked(sig signature.Signature, page item.Page) {
	if sig.Append {
		o.state.Items = append(o.state.Items, page.Items...)
	} else {
		o.state.Items = append([]item.Item{}, page.Items...)
		o.state.ResetToken++
	}

	o.state.TotalCount = page.Total
	if o.state.TotalCount == 0 {
		o.state.TotalCount = len(page.Items)
	}
	o.state.HasMore = len(page.Items) == sig.Limit
}

func (o *Orchestrator) failLocked(sig signature.Signature) {
	if !sig.Append {
		o.state.Items = []item.Item{}
		o.state.TotalCount = 0
		o.state.ResetToken++
	}
	o.state.HasMore = false
}

func (o *Orchestrator) notify(s State) {
	if o.listener != nil {
		o.listener(s)
	}
}
