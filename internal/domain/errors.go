package domain

import (
	"errors"
	"fmt"
	"net"
)

// Sentinel errors
var (
	// ErrOutsideBase indicates a path that does not live under the base directory
	ErrOutsideBase = errors.New("path is outside the base directory")

	// ErrNotUTF8 indicates a relative path that cannot be rendered as UTF-8 text
	ErrNotUTF8 = errors.New("path is not valid UTF-8")

	// ErrOpen indicates a file could not be opened
	ErrOpen = errors.New("cannot open file")

	// ErrStat indicates file metadata could not be read
	ErrStat = errors.New("cannot read file metadata")

	// ErrRead indicates file contents could not be read
	ErrRead = errors.New("cannot read file contents")

	// ErrGlobMatch indicates a file pattern could not be expanded
	ErrGlobMatch = errors.New("cannot expand file pattern")

	// ErrNoRegistry indicates an external reference with no registry configured
	ErrNoRegistry = errors.New("no registry configured")

	// ErrInvoiceNotFound indicates the registry has no invoice with that id
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrParcelNotFound indicates an external invoice has no parcel with the requested name
	ErrParcelNotFound = errors.New("parcel not found in invoice")

	// ErrParcelAmbiguous indicates an external invoice has several parcels with the requested name
	ErrParcelAmbiguous = errors.New("parcel name is ambiguous in invoice")

	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")

	// ErrInvalidURL indicates an invalid URL was provided
	ErrInvalidURL = errors.New("invalid URL")

	// ErrDigestMismatch indicates file contents changed since the invoice was built
	ErrDigestMismatch = errors.New("digest mismatch")
)

// PathError reports a path that could not be expressed relative to the base directory
type PathError struct {
	Path string
	Base string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %s relative to %s: %v", e.Path, e.Base, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// IOError reports a filesystem failure. Op is one of ErrOpen, ErrStat,
// ErrRead or ErrGlobMatch; Err is the underlying cause.
type IOError struct {
	Op   error
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Op)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Op, e.Err)
}

func (e *IOError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Op}
	}
	return []error{e.Op, e.Err}
}

// NewIOError creates a new IOError
func NewIOError(op error, path string, err error) *IOError {
	return &IOError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// ResolutionError reports a failure to resolve an external parcel reference
type ResolutionError struct {
	Ref string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// FetchError represents an error talking to the registry
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}
