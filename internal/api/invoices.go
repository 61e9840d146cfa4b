package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// createInvoiceRequest is the invoice creation body.
type createInvoiceRequest struct {
	BookIDs []int `json:"book_ids"`
}

// CreateInvoice asks the server to bill the given books, in order.
func (c *Client) CreateInvoice(ctx context.Context, bookIDs []int) (types.Invoice, error) {
	var inv types.Invoice
	err := c.do(ctx, http.MethodPost, pathInvoices, nil, createInvoiceRequest{BookIDs: bookIDs}, &inv)
	return inv, err
}

// ListInvoices returns the logged-in user's invoices, newest first.
func (c *Client) ListInvoices(ctx context.Context) ([]types.Invoice, error) {
	var out []types.Invoice
	if err := c.do(ctx, http.MethodGet, pathInvoices, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetInvoice returns one invoice with its line items.
func (c *Client) GetInvoice(ctx context.Context, id int) (types.Invoice, error) {
	var inv types.Invoice
	err := c.do(ctx, http.MethodGet, pathInvoices+"/"+strconv.Itoa(id), nil, nil, &inv)
	return inv, err
}
