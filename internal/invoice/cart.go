// Package invoice builds invoices from a cart of catalog books and reads the
// user's invoice history.
package invoice

import "github.com/mesh-intelligence/storefront/pkg/types"

// Cart is an ordered set of books keyed by book ID. The zero value is an
// empty cart. Cart is not safe for concurrent use; Builder guards its own.
type Cart struct {
	items []types.CartItem
}

// Add appends item unless its book is already in the cart. Reports whether
// the cart changed.
func (c *Cart) Add(item types.CartItem) bool {
	if c.Contains(item.BookID) {
		return false
	}
	c.items = append(c.items, item)
	return true
}

// Remove deletes the entry for bookID, if any. Reports whether the cart
// changed.
func (c *Cart) Remove(bookID int) bool {
	for i, it := range c.items {
		if it.BookID == bookID {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether bookID is in the cart.
func (c *Cart) Contains(bookID int) bool {
	for _, it := range c.items {
		if it.BookID == bookID {
			return true
		}
	}
	return false
}

// Items returns a copy of the cart in insertion order.
func (c *Cart) Items() []types.CartItem {
	return append([]types.CartItem(nil), c.items...)
}

// BookIDs returns the book IDs in insertion order.
func (c *Cart) BookIDs() []int {
	ids := make([]int, len(c.items))
	for i, it := range c.items {
		ids[i] = it.BookID
	}
	return ids
}

// Len returns the number of distinct books.
func (c *Cart) Len() int { return len(c.items) }
