package types

import "errors"

// Local validation errors. None of these ever reach the network.
var (
	ErrAuthRequired  = errors.New("you must be logged in")
	ErrEmptyCart     = errors.New("no books selected for invoice")
	ErrEmptySearch   = errors.New("type something to search")
	ErrTitleRequired = errors.New("title is required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrInvalidSort   = errors.New("sort must be title or price")
	ErrInvalidDir    = errors.New("direction must be asc or desc")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidID     = errors.New("invalid book ID")
)

// IsValidation reports whether err is one of the local validation errors.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrAuthRequired, ErrEmptyCart, ErrEmptySearch, ErrTitleRequired,
		ErrNegativePrice, ErrInvalidSort, ErrInvalidDir, ErrInvalidLimit, ErrInvalidID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
