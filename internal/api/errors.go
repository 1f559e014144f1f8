package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	// UnknownErrorMessage is used when the backend gave no usable body.
	UnknownErrorMessage = "Unknown error occurred."

	// DefaultErrorMessage is what call sites show when an error carries
	// no message of its own.
	DefaultErrorMessage = "An error occurred"
)

// Kind classifies an API failure.
type Kind int

const (
	// KindTransport means no response was received.
	KindTransport Kind = iota + 1

	// KindValidation means the backend returned structured field errors.
	KindValidation

	// KindMessage means the backend returned a message-only failure.
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Error is the single error shape returned by every Client call.
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string

	// Fields maps form field names to messages for validation failures.
	Fields map[string]string

	// Err is the underlying transport error, if any.
	Err error

	// Expired is set for an HTTP 401 whose body carries no backend
	// message, which is how the token layer reports a missing or expired
	// session.
	Expired bool
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s error", e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Method != "" {
		fmt.Fprintf(&b, " on %s %s", e.Method, e.Path)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(parts, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is an HTTP 401 from the backend.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == http.StatusUnauthorized
}

// IsSessionExpired reports whether err means the session cookie is no
// longer accepted. A 401 with a backend message, such as the one sent to
// unverified users, is an ordinary failure.
func IsSessionExpired(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Expired
}

// ErrorMessage returns the text to show the user for err, or fallback
// when the error carries no message.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// FieldErrors returns the per-field validation messages carried by err.
func FieldErrors(err error) map[string]string {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Fields
	}
	return nil
}

type errorBody struct {
	Message json.RawMessage            `json:"message"`
	Msg     json.RawMessage            `json:"msg"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// decodeError turns a non-2xx response into an *Error.
func decodeError(method, path string, status int, body []byte) *Error {
	apiErr := &Error{
		Kind:   KindMessage,
		Status: status,
		Method: method,
		Path:   path,
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = UnknownErrorMessage
		apiErr.Expired = status == http.StatusUnauthorized
		return apiErr
	}

	apiErr.Message = rawText(eb.Message)
	if status == http.StatusUnauthorized && len(eb.Message) == 0 {
		apiErr.Expired = true
		apiErr.Message = rawText(eb.Msg)
	}

	if len(eb.Errors) > 0 {
		apiErr.Kind = KindValidation
		apiErr.Fields = make(map[string]string, len(eb.Errors))
		for field, raw := range eb.Errors {
			apiErr.Fields[field] = rawText(raw)
		}
	}

	return apiErr
}

// rawText renders a JSON string, list of strings, or scalar as text.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}

	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}

	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
