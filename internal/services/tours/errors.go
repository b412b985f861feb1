package tours

import "errors"

var (
	// ErrTourNotFound - tour not found (or secret and the path is not privileged).
	ErrTourNotFound = errors.New("tour not found")

	// ErrDuplicateName - the unique name index was violated.
	ErrDuplicateName = errors.New("a tour with this name already exists")

	// ErrInvalidDiscount - discount must stay strictly below the price.
	ErrInvalidDiscount = errors.New("discount price must be smaller than the tour price")
)
