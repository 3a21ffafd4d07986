package domain

import (
	"errors"
	"fmt"
)

// ExtractionError reports a failed call to the text extraction service.
type ExtractionError struct {
	Document DocumentReference
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract text from %s: %v", e.Document, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrExtraction) match any extraction failure.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// ScanError reports a failed call to the entity detection service.
type ScanError struct {
	LanguageCode string
	TextLength   int
	Err          error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("detect pii entities (lang=%s, chars=%d): %v", e.LanguageCode, e.TextLength, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrScan) match any scan failure.
func (e *ScanError) Is(target error) bool { return target == ErrScan }

// WriteError reports a failed write to the finding store.
type WriteError struct {
	DocumentKey string
	Err         error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write findings for %q: %v", e.DocumentKey, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrWrite) match any write failure.
func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// ErrorKind names the stage an error originated from, for logs and alert tags.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrExtraction):
		return "extraction"
	case errors.Is(err, ErrScan):
		return "scan"
	case errors.Is(err, ErrWrite):
		return "write"
	}
	return "unknown"
}
