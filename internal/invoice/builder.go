package invoice

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// searchLimit is the page size used when searching books for the cart.
const searchLimit = 50

// Client is the subset of the API client the builder uses.
type Client interface {
	FilterBooks(ctx context.Context, q types.Query) (types.Page, error)
	CreateInvoice(ctx context.Context, bookIDs []int) (types.Invoice, error)
	ListInvoices(ctx context.Context) ([]types.Invoice, error)
}

// Credentials reports whether the user is logged in.
type Credentials interface {
	Authenticated() bool
}

// Builder holds the cart, the last created invoice, book search results, and
// the invoice history panel. It is safe for concurrent use.
type Builder struct {
	client Client
	creds  Credentials
	logger *zap.Logger

	mu          sync.Mutex
	cart        Cart
	invoice     *types.Invoice
	invoiceErr  error
	results     []types.Book
	searchErr   error
	showHistory bool
	history     []types.Invoice
	historyErr  error
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for request failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a builder with an empty cart.
func NewBuilder(client Client, creds Credentials, opts ...Option) *Builder {
	b := &Builder{client: client, creds: creds, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add stages a book. Adding a book already in the cart is a no-op and
// reports false.
func (b *Builder) Add(book types.Book) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cart.Add(book.CartItem())
}

// AddResult stages the search result with the given book ID. Reports false
// when the book is already staged; ok is false when no result has that ID.
func (b *Builder) AddResult(bookID int) (added, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bk := range b.results {
		if bk.ID == bookID {
			return b.cart.Add(bk.CartItem()), true
		}
	}
	return false, false
}

// Remove unstages a book. Removing an absent book is a no-op.
func (b *Builder) Remove(bookID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cart.Remove(bookID)
}

// Items returns the staged books in the order they were added.
func (b *Builder) Items() []types.CartItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cart.Items()
}

// Create sends the cart to the server and returns the invoice it computed.
// Without a credential it fails with ErrAuthRequired, and with an empty cart
// with ErrEmptyCart; neither sends anything. On success the books sent are
// removed from the cart; books added while the request ran stay.
// On a request failure the cart is left as it was.
func (b *Builder) Create(ctx context.Context) (types.Invoice, error) {
	b.mu.Lock()
	if b.creds == nil || !b.creds.Authenticated() {
		b.invoiceErr = types.ErrAuthRequired
		b.mu.Unlock()
		return types.Invoice{}, types.ErrAuthRequired
	}
	if b.cart.Len() == 0 {
		b.invoiceErr = types.ErrEmptyCart
		b.mu.Unlock()
		return types.Invoice{}, types.ErrEmptyCart
	}
	ids := b.cart.BookIDs()
	b.invoiceErr = nil
	b.invoice = nil
	b.mu.Unlock()

	inv, err := b.client.CreateInvoice(ctx, ids)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.logger.Warn("create invoice failed", zap.Ints("book_ids", ids), zap.Error(err))
		b.invoiceErr = err
		return types.Invoice{}, err
	}
	b.invoice = &inv
	for _, id := range ids {
		b.cart.Remove(id)
	}
	return inv, nil
}

// Invoice returns the last invoice created and the last create error.
func (b *Builder) Invoice() (*types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.invoice == nil {
		return nil, b.invoiceErr
	}
	inv := *b.invoice
	return &inv, b.invoiceErr
}

// Search finds books whose title matches text, for adding to the cart. An
// empty text fails with ErrEmptySearch and sends nothing. A new search
// clears the previous search error; a failed one keeps the previous results.
func (b *Builder) Search(ctx context.Context, text string) ([]types.Book, error) {
	if strings.TrimSpace(text) == "" {
		b.mu.Lock()
		b.searchErr = types.ErrEmptySearch
		b.mu.Unlock()
		return nil, types.ErrEmptySearch
	}
	b.mu.Lock()
	b.searchErr = nil
	b.mu.Unlock()

	page, err := b.client.FilterBooks(ctx, types.Query{Subject: text, Limit: searchLimit})

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.logger.Warn("search books failed", zap.String("text", text), zap.Error(err))
		b.searchErr = err
		return nil, err
	}
	b.results = page.Books
	return append([]types.Book(nil), b.results...), nil
}

// Results returns the last search results and error.
func (b *Builder) Results() ([]types.Book, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.Book(nil), b.results...), b.searchErr
}

// ToggleHistory flips the history panel. Turning it on fetches the user's
// invoices; without a credential nothing is fetched and the history stays
// empty. Returns whether the panel is now visible.
func (b *Builder) ToggleHistory(ctx context.Context) (bool, error) {
	b.mu.Lock()
	b.showHistory = !b.showHistory
	visible := b.showHistory
	authed := b.creds != nil && b.creds.Authenticated()
	if visible {
		b.historyErr = nil
	}
	b.mu.Unlock()

	if !visible || !authed {
		return visible, nil
	}

	invoices, err := b.client.ListInvoices(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.logger.Warn("list invoices failed", zap.Error(err))
		b.historyErr = err
		return visible, err
	}
	b.history = invoices
	return visible, nil
}

// History returns whether the panel is visible, the invoices last fetched,
// and the last fetch error.
func (b *Builder) History() (bool, []types.Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.showHistory, append([]types.Invoice(nil), b.history...), b.historyErr
}
