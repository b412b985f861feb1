package reviews

import "errors"

var (
	// ErrReviewNotFound - review not found in DB.
	ErrReviewNotFound = errors.New("review not found")

	// ErrAlreadyReviewed - the (tour, user) pair already has a review.
	ErrAlreadyReviewed = errors.New("you have already reviewed this tour")

	// ErrNotAuthor - only the author may change their review.
	ErrNotAuthor = errors.New("you can only modify your own review")
)
