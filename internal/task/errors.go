package task

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Form field names.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
)

// Field error messages shown next to the form inputs.
const (
	MsgTitleRequired      = "Title is required."
	MsgStatusRequired     = "Status is required."
	MsgDescriptionInvalid = "Description must be text."
)

// FieldErrors maps a form field name to the messages explaining why it was
// rejected.
type FieldErrors map[string][]string

// Add records msg for field, skipping exact duplicates.
func (fe FieldErrors) Add(field, msg string) {
	for _, existing := range fe[field] {
		if existing == msg {
			return
		}
	}
	fe[field] = append(fe[field], msg)
}

// Fields returns the rejected field names in sorted order.
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// First returns the first message for field, or "" if it has none.
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, field := range fe.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(fe[field], " ")))
	}
	return "invalid task: " + strings.Join(parts, "; ")
}

// ErrMalformedStore is matched by every *MalformedStoreError.
var ErrMalformedStore = errors.New("malformed task store")

// MalformedStoreError reports a stored value that could not be read back
// as a task sequence. Callers should treat it as "no usable saved data".
type MalformedStoreError struct {
	Key string
	Err error
}

func (e *MalformedStoreError) Error() string {
	return fmt.Sprintf("malformed task store %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedStoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedStore.
func (e *MalformedStoreError) Is(target error) bool {
	return target == ErrMalformedStore
}

// ValidationError is a single problem found in stored data.
type ValidationError struct {
	Path string // path to the offending value, e.g. "[2].title"
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
