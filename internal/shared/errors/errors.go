package errors

import "errors"

// Domain errors
var (
	// Scan errors
	ErrEmptyTarget   = errors.New("scan target cannot be empty")
	ErrScanNotFound  = errors.New("scan not found")
	ErrInvalidScanID = errors.New("invalid scan id")

	// History errors
	ErrHistoryDisabled = errors.New("scan history is disabled")

	// Report errors
	ErrUnsupportedFormat = errors.New("unsupported report format")

	// API errors
	ErrInvalidRequest = errors.New("invalid request body")
)
