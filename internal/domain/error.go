package domain

import "errors"

var (
	// Common domain errors
	ErrEmptyCode       = errors.New("activation code is empty")
	ErrBadCodeFormat   = errors.New("activation code format is invalid")
	ErrCodeNotFound    = errors.New("activation code not found")
	ErrCodeAlreadyUsed = errors.New("activation code already used")

	// ErrNoRowsUpdated is returned by the store when a conditional update
	// matched no row. The redemption flow disambiguates it with a follow-up read.
	ErrNoRowsUpdated = errors.New("no rows updated")
)
