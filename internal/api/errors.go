package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is returned for every failed backend call. Status is zero when no
// HTTP response was received (DNS, refused connection, timeout, cancel).
type Error struct {
	Message string
	Status  int
	Details json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasResponse reports whether the backend answered with an HTTP status.
func (e *Error) HasResponse() bool {
	return e.Status != 0
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// statusError builds the error for a non-2xx response. The body is parsed
// best-effort: a "detail" string wins, anything unparsable falls back to the
// status-derived message.
func statusError(status int, body []byte) *Error {
	apiErr := &Error{
		Message: fmt.Sprintf("HTTP error! status: %d", status),
		Status:  status,
	}
	if len(body) == 0 || !json.Valid(body) {
		return apiErr
	}
	apiErr.Details = json.RawMessage(body)

	var envelope struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}
	if detail, ok := envelope.Detail.(string); ok && detail != "" {
		apiErr.Message = detail
	}
	return apiErr
}

func networkError(err error) *Error {
	msg := "An unknown error occurred"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{Message: msg, Err: err}
}
