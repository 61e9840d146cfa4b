package types

import "strings"

// Book is a catalog entry as served by the API. ID is assigned by the server.
type Book struct {
	ID        int     `json:"id"`
	Publisher string  `json:"publisher"`
	Level     string  `json:"level"`
	ISBN      string  `json:"isbn"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
}

// BookInput carries the writable fields of a Book for create and update.
type BookInput struct {
	Publisher string  `json:"publisher"`
	Level     string  `json:"level"`
	ISBN      string  `json:"isbn"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
}

// Validate applies the required-field checks done before a book is sent.
func (in BookInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// Input returns the writable fields of b, used to prefill an edit.
func (b Book) Input() BookInput {
	return BookInput{
		Publisher: b.Publisher,
		Level:     b.Level,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Price:     b.Price,
		Status:    b.Status,
	}
}

// CartItem projects a Book.
func (b Book) CartItem() CartItem {
	return CartItem{BookID: b.ID, Title: b.Title, Price: b.Price}
}
