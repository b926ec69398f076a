package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested movie does not exist in the catalog
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrRemoteUnavailable indicates a network, HTTP or decoding failure talking to the catalog
	ErrRemoteUnavailable = errors.New("remote catalog is unavailable")

	// ErrAuthFailed indicates the catalog rejected the credentials
	ErrAuthFailed = errors.New("catalog credentials are invalid")

	// ErrNotAuthenticated indicates an account operation was attempted without a session
	ErrNotAuthenticated = errors.New("catalog account is not authenticated")

	// ErrStorage indicates a durable storage read or write failed
	ErrStorage = errors.New("storage failure")

	// ErrCorruptValue indicates a stored value could not be decoded
	ErrCorruptValue = errors.New("stored value is corrupt")

	// ErrInvalidRating indicates a rating outside MinRating..MaxRating
	ErrInvalidRating = errors.New("rating out of range")

	// ErrUnknownListKind indicates an unrecognised list name
	ErrUnknownListKind = errors.New("unknown list kind")
)
