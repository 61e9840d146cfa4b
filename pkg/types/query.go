package types

import (
	"net/url"
	"strconv"
)

// Sort keys accepted by the filter endpoint.
const (
	SortTitle = "title"
	SortPrice = "price"
)

// Sort directions.
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// Defaults of the catalog list view.
const (
	DefaultSort      = SortTitle
	DefaultDirection = DirAsc
	DefaultPage      = 1
	DefaultLimit     = 5
)

// Query is the user-editable filter, sort and pagination state of the
// catalog list. Empty filter strings mean "no constraint".
type Query struct {
	Publisher string `json:"publisher,omitempty"`
	Level     string `json:"level,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Sort      string `json:"sort"`
	Direction string `json:"direction"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
}

// DefaultQuery returns the state the catalog list starts in.
func DefaultQuery() Query {
	return Query{
		Sort:      DefaultSort,
		Direction: DefaultDirection,
		Page:      DefaultPage,
		Limit:     DefaultLimit,
	}
}

// ValidateSort reports whether key is a known sort key.
func ValidateSort(key string) error {
	if key != SortTitle && key != SortPrice {
		return ErrInvalidSort
	}
	return nil
}

// ValidateDirection reports whether dir is a known direction.
func ValidateDirection(dir string) error {
	if dir != DirAsc && dir != DirDesc {
		return ErrInvalidDir
	}
	return nil
}

// Values encodes q as filter endpoint query parameters. Empty filters are
// omitted entirely; the server treats omission as no constraint.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Publisher != "" {
		v.Set("publisher", q.Publisher)
	}
	if q.Level != "" {
		v.Set("level", q.Level)
	}
	if q.Subject != "" {
		v.Set("subject", q.Subject)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Direction != "" {
		v.Set("direction", q.Direction)
	}
	if q.Page != 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit != 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Page is one page of filter results.
type Page struct {
	Books      []Book `json:"data"`
	TotalPages int    `json:"total_pages"`
}
