package posts

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"chirp/db"
	"chirp/directory"
)

var (
	// ErrAuthorNotFound means a post references an author the directory
	// did not return. The whole request fails.
	ErrAuthorNotFound = errors.New("author for post not found")

	// ErrUnauthorized is returned when a post is created without a caller
	ErrUnauthorized = errors.New("you must be signed in to post")

	ErrPostNotFound = db.ErrPostNotFound
	ErrUserNotFound = directory.ErrUserNotFound
)

// ValidationError carries per-field messages for rejected input
type ValidationError struct {
	FieldErrors map[string][]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for field := range e.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.FieldErrors[field], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = map[string][]string{}
	}
	e.FieldErrors[field] = append(e.FieldErrors[field], message)
}

// FirstFieldError returns the first message for field, if any
func FirstFieldError(err error, field string) (string, bool) {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return "", false
	}
	messages := verr.FieldErrors[field]
	if len(messages) == 0 || messages[0] == "" {
		return "", false
	}
	return messages[0], true
}
