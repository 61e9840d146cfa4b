package types

import (
	"encoding/json"
	"time"
)

// CartItem is a book staged for an invoice.
type CartItem struct {
	BookID int     `json:"book_id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
}

// Invoice is a server-computed billing record. History listings only carry
// ID, CreatedAt and TotalPrice.
type Invoice struct {
	ID         int           `json:"id"`
	UserName   string        `json:"user_name,omitempty"`
	CreatedAt  Timestamp     `json:"created_at"`
	TotalPrice float64       `json:"total_price"`
	Items      []InvoiceItem `json:"items,omitempty"`
}

// InvoiceItem is one line of an Invoice.
type InvoiceItem struct {
	BookID    int     `json:"book_id"`
	Title     string  `json:"title,omitempty"`
	BookPrice float64 `json:"book_price"`
	Quantity  int     `json:"quantity"`
}

// Timestamp decodes the API's ISO 8601 timestamps, which may lack a zone
// offset, and keeps the original text for display.
type Timestamp struct {
	time.Time
	Raw string
}

// timestampLayouts are tried in order when decoding.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON accepts a JSON string in any of timestampLayouts. A value
// that matches none is kept in Raw with a zero Time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &time.ParseError{Layout: time.RFC3339, Value: s, Message: ": expected JSON string"}
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t.Raw = s
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

// MarshalJSON writes the original text when present.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" || t.Time.IsZero() {
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// String returns the text the server sent.
func (t Timestamp) String() string {
	if t.Raw != "" {
		return t.Raw
	}
	return t.Time.Format(time.RFC3339)
}
