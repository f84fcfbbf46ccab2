package moodle

import (
	"fmt"
	"net/http"
	"strings"
)

const maxErrorBody = 512

// APIError is returned when the web service answers with a non-2xx status.
type APIError struct {
	Function   string
	StatusCode int
	Header     http.Header
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("moodle %s: status %d: %s", e.Function, e.StatusCode, truncate(e.Body, maxErrorBody))
}

// ExceptionError is returned when the web service answers 200 with an
// exception object, e.g. an invalid token or a missing capability.
type ExceptionError struct {
	Function  string
	Exception string
	ErrorCode string
	Message   string
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("moodle %s: %s (%s): %s", e.Function, e.Exception, e.ErrorCode, e.Message)
}

// MissingFieldError reports an expected key absent from a response body.
type MissingFieldError struct {
	Function string
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("moodle %s: response is missing field %q", e.Function, e.Field)
}

// SchemaError reports a response whose shape does not match what the client expects.
type SchemaError struct {
	Function string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("moodle %s: unexpected response shape: %s", e.Function, strings.Join(e.Problems, "; "))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
