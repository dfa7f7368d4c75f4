// Package feed pages through a remote collection with offset pagination.
package feed

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/quill-social/quill/pkg/logger"
)

// DefaultPageSize is the number of raw items requested per page
const DefaultPageSize = 10

// SortOrder is the direction of the server-side sort
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// PageRequest describes one page fetch
type PageRequest struct {
	Filter    map[string]string
	SortBy    string
	SortOrder SortOrder
	Limit     int
	Offset    int
}

// PageSource fetches one page. Returning fewer than req.Limit items is the
// only end-of-data signal.
type PageSource[T any] interface {
	FetchPage(ctx context.Context, req PageRequest) ([]T, error)
}

// PageSourceFunc adapts a function to PageSource
type PageSourceFunc[T any] func(ctx context.Context, req PageRequest) ([]T, error)

func (f PageSourceFunc[T]) FetchPage(ctx context.Context, req PageRequest) ([]T, error) {
	return f(ctx, req)
}

// State is a snapshot of the paginator
type State[T any] struct {
	Items          []T
	Offset         int
	HasMore        bool
	LoadingInitial bool
	LoadingMore    bool
	// Err is the last fetch failure; cleared when a new load starts
	Err      error
	Identity string
}

// Option configures a Paginator
type Option[T any] func(*Paginator[T])

// WithPageSize sets the page size. Values below 1 are ignored.
func WithPageSize[T any](size int) Option[T] {
	return func(p *Paginator[T]) {
		if size > 0 {
			p.pageSize = size
		}
	}
}

// WithFilter sets a client-side filter applied to every raw page
func WithFilter[T any](keep func(T) bool) Option[T] {
	return func(p *Paginator[T]) { p.keep = keep }
}

// WithQuery sets server-side equality filters
func WithQuery[T any](filter map[string]string) Option[T] {
	return func(p *Paginator[T]) { p.filter = filter }
}

// WithSort sets the server-side sort
func WithSort[T any](column string, order SortOrder) Option[T] {
	return func(p *Paginator[T]) {
		p.sortBy = column
		p.order = order
	}
}

// WithIdentity sets the initial session identity
func WithIdentity[T any](identity string) Option[T] {
	return func(p *Paginator[T]) { p.state.Identity = identity }
}

// WithLogger sets the paginator logger
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(p *Paginator[T]) { p.log = l }
}

// Paginator accumulates pages from a PageSource. At most one fetch is in
// flight; results that arrive after Reset are dropped.
type Paginator[T any] struct {
	src      PageSource[T]
	pageSize int
	keep     func(T) bool
	filter   map[string]string
	sortBy   string
	order    SortOrder
	log      *log.Logger

	mu         sync.Mutex
	state      State[T]
	generation uint64
}

// New creates a paginator sorted by created_at descending
func New[T any](src PageSource[T], opts ...Option[T]) *Paginator[T] {
	p := &Paginator[T]{
		src:      src,
		pageSize: DefaultPageSize,
		sortBy:   "created_at",
		order:    SortDesc,
		log:      logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PageSize returns the configured page size
func (p *Paginator[T]) PageSize() int {
	return p.pageSize
}

func (p *Paginator[T]) request(offset int) PageRequest {
	return PageRequest{
		Filter:    p.filter,
		SortBy:    p.sortBy,
		SortOrder: p.order,
		Limit:     p.pageSize,
		Offset:    offset,
	}
}

func (p *Paginator[T]) visible(raw []T) []T {
	if p.keep == nil {
		return raw
	}
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		if p.keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// LoadInitial fetches the first page and replaces the item list. A call
// while the initial load is running is a no-op. On failure the previous
// items stay in place.
func (p *Paginator[T]) LoadInitial(ctx context.Context) error {
	p.mu.Lock()
	if p.state.LoadingInitial {
		p.mu.Unlock()
		return nil
	}
	// a page still in flight from LoadMore belongs to the old list
	p.generation++
	p.state.LoadingInitial = true
	p.state.LoadingMore = false
	p.state.Err = nil
	gen := p.generation
	p.mu.Unlock()

	return p.load(ctx, gen, 0, true)
}

// LoadMore fetches the next page. It reports false without fetching when a
// load is already running or there is nothing more to load.
func (p *Paginator[T]) LoadMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.state.LoadingInitial || p.state.LoadingMore || !p.state.HasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.state.LoadingMore = true
	p.state.Err = nil
	gen := p.generation
	offset := p.state.Offset
	p.mu.Unlock()

	if err := p.load(ctx, gen, offset, false); err != nil {
		return true, err
	}
	return true, nil
}

// load fetches from offset until a page yields visible items or the data
// ends. Each page is applied under the lock only if no Reset happened.
func (p *Paginator[T]) load(ctx context.Context, gen uint64, offset int, replace bool) error {
	for {
		raw, err := p.src.FetchPage(ctx, p.request(offset))

		p.mu.Lock()
		if gen != p.generation {
			p.mu.Unlock()
			p.log.Debug("Discarding stale page", "offset", offset)
			return nil
		}
		if err != nil {
			p.state.Err = err
			p.state.LoadingInitial = false
			p.state.LoadingMore = false
			p.mu.Unlock()
			p.log.Warn("Page fetch failed", "offset", offset, "err", err)
			return err
		}

		items := p.visible(raw)
		if replace {
			p.state.Items = items
			replace = false
		} else {
			p.state.Items = append(p.state.Items, items...)
		}
		p.state.Offset = offset + len(raw)
		p.state.HasMore = len(raw) == p.pageSize

		if len(items) > 0 || !p.state.HasMore {
			p.state.LoadingInitial = false
			p.state.LoadingMore = false
			p.mu.Unlock()
			p.log.Debug("Loaded page", "offset", offset, "raw", len(raw), "visible", len(items))
			return nil
		}

		offset = p.state.Offset
		p.mu.Unlock()
		p.log.Debug("Page filtered out entirely, fetching next", "offset", offset)
	}
}

// Reset clears all state for a new identity. Fetches still in flight are
// discarded when they return.
func (p *Paginator[T]) Reset(identity string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.state = State[T]{Identity: identity}
}

// State returns a copy of the current state
func (p *Paginator[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.Items = append([]T(nil), p.state.Items...)
	return s
}
