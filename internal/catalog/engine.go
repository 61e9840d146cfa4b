// Package catalog drives the book list: filter, sort and pagination state,
// and the one query each state change issues against the API.
//
// Every state change that alters the query issues exactly one fetch. Setting
// a value to what it already is changes nothing and fetches nothing. Each
// fetch takes a sequence number; a response that arrives after a newer fetch
// was issued is discarded.
package catalog

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Fetcher is the subset of the API client the engine uses.
type Fetcher interface {
	FilterBooks(ctx context.Context, q types.Query) (types.Page, error)
	ListBooks(ctx context.Context) ([]types.Book, error)
	DeleteBook(ctx context.Context, id int) error
}

// Credentials reports whether the user is logged in.
type Credentials interface {
	Authenticated() bool
}

// ErrStale is returned to a caller whose response arrived after a newer
// fetch was issued. The response was not applied.
var ErrStale = errors.New("response superseded by a newer query")

// Snapshot is a copy of the engine state for rendering.
type Snapshot struct {
	Query      types.Query
	Books      []types.Book
	TotalPages int
	Loading    bool
	Err        error
}

// Engine holds the catalog list state. It is safe for concurrent use; the
// request itself runs outside the lock.
type Engine struct {
	fetcher Fetcher
	creds   Credentials
	logger  *zap.Logger

	mu         sync.Mutex
	query      types.Query
	books      []types.Book
	totalPages int
	loading    bool
	err        error
	issued     uint64
	// listing is set while the plain list from LoadAll is shown; the next
	// query change fetches even if the query is unchanged.
	listing bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithQuery sets the starting query instead of types.DefaultQuery.
func WithQuery(q types.Query) Option {
	return func(e *Engine) { e.query = q }
}

// New creates an engine. Nothing is fetched until Load.
func New(f Fetcher, creds Credentials, opts ...Option) *Engine {
	e := &Engine{
		fetcher:    f,
		creds:      creds,
		logger:     zap.NewNop(),
		query:      types.DefaultQuery(),
		totalPages: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Query:      e.query,
		Books:      append([]types.Book(nil), e.books...),
		TotalPages: e.totalPages,
		Loading:    e.loading,
		Err:        e.err,
	}
}

// Query returns the current query.
func (e *Engine) Query() types.Query {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Load fetches the current query. It is the initial fetch and the re-fetch
// after a mutation.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	q := e.query
	e.listing = false
	seq := e.beginLocked()
	e.mu.Unlock()
	return e.fetch(ctx, seq, q)
}

// SetPublisher changes the publisher filter and returns to page 1.
func (e *Engine) SetPublisher(ctx context.Context, v string) error {
	return e.update(ctx, func(q *types.Query) { q.Publisher = v; q.Page = 1 })
}

// SetLevel changes the level filter and returns to page 1.
func (e *Engine) SetLevel(ctx context.Context, v string) error {
	return e.update(ctx, func(q *types.Query) { q.Level = v; q.Page = 1 })
}

// SetSubject changes the subject filter and returns to page 1.
func (e *Engine) SetSubject(ctx context.Context, v string) error {
	return e.update(ctx, func(q *types.Query) { q.Subject = v; q.Page = 1 })
}

// SetSort changes the sort key and returns to page 1.
func (e *Engine) SetSort(ctx context.Context, key string) error {
	if err := types.ValidateSort(key); err != nil {
		return err
	}
	return e.update(ctx, func(q *types.Query) { q.Sort = key; q.Page = 1 })
}

// SetDirection changes the sort direction and returns to page 1.
func (e *Engine) SetDirection(ctx context.Context, dir string) error {
	if err := types.ValidateDirection(dir); err != nil {
		return err
	}
	return e.update(ctx, func(q *types.Query) { q.Direction = dir; q.Page = 1 })
}

// SetLimit changes the page size and returns to page 1.
func (e *Engine) SetLimit(ctx context.Context, n int) error {
	if n < 1 {
		return types.ErrInvalidLimit
	}
	return e.update(ctx, func(q *types.Query) { q.Limit = n; q.Page = 1 })
}

// SetPage jumps to page n as typed. The value is not checked against the
// total page count; the server answers out-of-range pages itself.
func (e *Engine) SetPage(ctx context.Context, n int) error {
	return e.update(ctx, func(q *types.Query) { q.Page = n })
}

// ViewAll clears the three filters and returns to page 1 in one change.
func (e *Engine) ViewAll(ctx context.Context) error {
	return e.update(ctx, func(q *types.Query) {
		q.Publisher, q.Level, q.Subject = "", "", ""
		q.Page = 1
	})
}

// Next advances one page. A no-op on the last page.
func (e *Engine) Next(ctx context.Context) error {
	return e.update(ctx, func(q *types.Query) {
		if q.Page < e.totalPages {
			q.Page++
		}
	})
}

// Prev goes back one page. A no-op on page 1.
func (e *Engine) Prev(ctx context.Context) error {
	return e.update(ctx, func(q *types.Query) {
		if q.Page > 1 {
			q.Page--
		}
	})
}

// Delete removes a book and re-fetches the current query. Without a
// credential nothing is sent. The displayed list is never edited locally:
// the removal can shift page boundaries on the server.
func (e *Engine) Delete(ctx context.Context, id int) error {
	if e.creds == nil || !e.creds.Authenticated() {
		return types.ErrAuthRequired
	}
	if err := e.fetcher.DeleteBook(ctx, id); err != nil {
		e.logger.Warn("delete book failed", zap.Int("book_id", id), zap.Error(err))
		return err
	}
	return e.Load(ctx)
}

// LoadAll replaces the list with the unfiltered catalog shown as a single
// page. The query is left as is; the next query command returns to it.
func (e *Engine) LoadAll(ctx context.Context) error {
	e.mu.Lock()
	e.listing = true
	seq := e.beginLocked()
	e.mu.Unlock()

	books, err := e.fetcher.ListBooks(ctx)
	return e.apply(seq, types.Page{Books: books, TotalPages: 1}, err)
}

// update applies mutate to a copy of the query under the lock. An unchanged
// query issues no fetch unless the plain list is shown; a changed one issues
// exactly one.
func (e *Engine) update(ctx context.Context, mutate func(q *types.Query)) error {
	e.mu.Lock()
	next := e.query
	mutate(&next)
	if next == e.query && !e.listing {
		e.mu.Unlock()
		return nil
	}
	e.query = next
	e.listing = false
	seq := e.beginLocked()
	e.mu.Unlock()
	return e.fetch(ctx, seq, next)
}

// beginLocked issues a new sequence number and marks the engine loading.
func (e *Engine) beginLocked() uint64 {
	e.issued++
	e.loading = true
	return e.issued
}

func (e *Engine) fetch(ctx context.Context, seq uint64, q types.Query) error {
	page, err := e.fetcher.FilterBooks(ctx, q)
	return e.apply(seq, page, err)
}

// apply stores a response if it belongs to the newest fetch. On error the
// previous books stay on display.
func (e *Engine) apply(seq uint64, page types.Page, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.issued {
		e.logger.Debug("discarding stale catalog response", zap.Uint64("seq", seq), zap.Uint64("latest", e.issued))
		return ErrStale
	}
	e.loading = false
	if err != nil {
		e.err = err
		e.logger.Warn("fetch books failed", zap.Error(err))
		return err
	}
	e.books = page.Books
	e.totalPages = normalizeTotal(page.TotalPages)
	e.err = nil
	return nil
}

// normalizeTotal maps the server's zero page count for an empty result to
// a single empty page.
func normalizeTotal(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
