package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrFamilyNotFound    = errors.New("family not found")
	ErrDirectoryNotFound = errors.New("directory entry not found")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrUnauthorized      = errors.New("invalid or missing api key")
)

// ValidationError carries per-field failure messages for a rejected
// submission or change set. It is recoverable: the caller records a
// REJECTED row or returns a 4xx payload, it never crashes an invocation.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) Any() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// FailedChecks lists the failed field names, sorted, for comment-log entries.
func (e *ValidationError) FailedChecks() []string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// ExternalServiceError is a terminal upstream failure: a non-2xx response
// from the geocoder, directory or mail API. Transport faults are retried
// before one of these is produced; an ExternalServiceError itself is never
// retried and never cached.
type ExternalServiceError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Message)
}
