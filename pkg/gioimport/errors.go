package gioimport

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of an import run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	_, err := importer.Import(ctx, config)
//	if errors.Is(err, gioimport.ErrNotFound) {
//	    // a required lookup row is missing
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfiguration indicates a configured resource (the input file) is unusable.
	ErrConfiguration = errors.New("configuration error")

	// ErrMalformedInput indicates required XML structure is absent from the input document.
	ErrMalformedInput = errors.New("malformed input")

	// ErrNotFound indicates a required lookup row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedGeometry indicates a stored geometry cannot be classified.
	ErrUnsupportedGeometry = errors.New("unsupported geometry")

	// ErrInvalidFormat indicates an optional text field is not parseable.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrStorage indicates a statement against the data store failed.
	ErrStorage = errors.New("storage error")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// NotFoundError names the entity whose lookup came back empty.
type NotFoundError struct {
	Entity string // e.g. "regulation version"
	Key    string // lookup key, may be empty
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// Unwrap lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFound builds a NotFoundError for entity, keyed by key.
func NewNotFound(entity string, key any) error {
	k := ""
	if key != nil {
		k = fmt.Sprint(key)
	}
	return &NotFoundError{Entity: entity, Key: k}
}

// StorageError wraps a failed store operation so it matches ErrStorage
// while keeping the driver error reachable through errors.As.
func StorageError(op string, err error) error {
	return &storageError{op: op, err: err}
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *storageError) Unwrap() []error {
	return []error{ErrStorage, e.err}
}

// usageErrorPatterns are the message fragments cobra uses for argument and flag errors.
var usageErrorPatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
	"missing required argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrConfiguration), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrMalformedInput):
		return ExitMalformedInput
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrUnsupportedGeometry):
		return ExitUnsupportedGeometry
	case errors.Is(err, ErrInvalidFormat):
		return ExitInvalidFormat
	case errors.Is(err, ErrStorage):
		return ExitStorageError
	}

	errStr := err.Error()
	for _, pattern := range usageErrorPatterns {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
