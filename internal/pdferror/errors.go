// Package pdferror defines the error taxonomy of the extraction pipeline.
//
// Page-local failures are wrapped in PageError and degrade one page to empty
// text. Document-local failures are wrapped in DocumentError and mark one
// document failed. Backend failures are wrapped in BackendError. Run-level
// conditions use the sentinels below.
package pdferror

import (
	"errors"
	"fmt"
)

var (
	// ErrRootNotFound is returned when the batch root directory does not exist.
	ErrRootNotFound = errors.New("root directory does not exist")

	// ErrNoDocuments is returned when the batch root contains no PDF files.
	ErrNoDocuments = errors.New("no PDF documents found")

	// ErrBackendUnavailable is returned by OCR operations once the backend
	// has failed permanently.
	ErrBackendUnavailable = errors.New("OCR backend unavailable")

	// ErrCorruptedModelCache marks model cache errors that a purge and
	// re-download can fix.
	ErrCorruptedModelCache = errors.New("corrupted OCR model cache")
)

// PageError represents a failure while obtaining the text of one page.
type PageError struct {
	Path  string
	Page  int
	Stage string
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s: page %d: %s failed: %v", e.Path, e.Page, e.Stage, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// DocumentError represents a failure that prevents a whole document from
// being processed.
type DocumentError struct {
	Path string
	Op   string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// BackendError represents an OCR engine initialization or runtime failure.
type BackendError struct {
	Engine string
	Err    error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("OCR engine %s: %v", e.Engine, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ValidationError represents an input that fails a precondition check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
