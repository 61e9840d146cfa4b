package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// ErrMissingData is returned when a filter response lacks its data field.
// A bare list is not accepted in its place.
var ErrMissingData = errors.New("filter response has no data field")

// ListBooks returns the full unfiltered catalog.
func (c *Client) ListBooks(ctx context.Context) ([]types.Book, error) {
	var books []types.Book
	if err := c.do(ctx, http.MethodGet, pathBooks, nil, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook returns one book.
func (c *Client) GetBook(ctx context.Context, id int) (types.Book, error) {
	var b types.Book
	err := c.do(ctx, http.MethodGet, bookPath(id), nil, nil, &b)
	return b, err
}

// CreateBook adds a book to the catalog.
func (c *Client) CreateBook(ctx context.Context, in types.BookInput) (types.Book, error) {
	var b types.Book
	err := c.do(ctx, http.MethodPost, pathBooks, nil, in, &b)
	return b, err
}

// UpdateBook replaces the writable fields of a book.
func (c *Client) UpdateBook(ctx context.Context, id int, in types.BookInput) (types.Book, error) {
	var b types.Book
	err := c.do(ctx, http.MethodPut, bookPath(id), nil, in, &b)
	return b, err
}

// DeleteBook removes a book.
func (c *Client) DeleteBook(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, bookPath(id), nil, nil, nil)
}

// filterResponse is the one accepted shape of a filter response.
type filterResponse struct {
	Data       *[]types.Book `json:"data"`
	TotalPages int           `json:"total_pages"`
}

// FilterBooks runs a filtered, sorted, paginated catalog query.
func (c *Client) FilterBooks(ctx context.Context, q types.Query) (types.Page, error) {
	var out filterResponse
	if err := c.do(ctx, http.MethodGet, pathFilter, q.Values(), nil, &out); err != nil {
		return types.Page{}, err
	}
	if out.Data == nil {
		return types.Page{}, fmt.Errorf("GET %s: %w", pathFilter, ErrMissingData)
	}
	return types.Page{Books: *out.Data, TotalPages: out.TotalPages}, nil
}

func bookPath(id int) string {
	return pathBooks + "/" + strconv.Itoa(id)
}
