package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoRecords indicates a trigger event carried no records
	ErrNoRecords = errors.New("event has no records")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates a client id or secret did not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrServiceUnavailable indicates a backing service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrExtraction is matched by every *ExtractionError
	ErrExtraction = errors.New("text extraction failed")

	// ErrScan is matched by every *ScanError
	ErrScan = errors.New("pii scan failed")

	// ErrWrite is matched by every *WriteError
	ErrWrite = errors.New("finding write failed")
)
