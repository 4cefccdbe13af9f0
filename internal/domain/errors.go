package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRating is returned when a review rating is outside the
	// four-button Again/Hard/Good/Easy range.
	ErrInvalidRating = errors.New("invalid review rating")

	// ErrInvalidDirection is returned when a card direction is not one of
	// term-first, meaning-first, or random.
	ErrInvalidDirection = errors.New("invalid card direction")

	// ErrInvalidStatus is returned when a card status is not valid.
	ErrInvalidStatus = errors.New("invalid card status")

	// ErrInvalidSource is returned when a card source variant is malformed,
	// for example a vocab source without a word.
	ErrInvalidSource = errors.New("invalid card source")
)
