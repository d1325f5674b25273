package item

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrNotFound is returned when no item has the requested id.
var ErrNotFound = errors.New("item not found")

// InputError reports a malformed write payload. It is a client error: callers should
// surface it verbatim and never retry.
type InputError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid item"
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid item: " + strings.Join(parts, "; ")
}

// Field returns the message recorded for name, if any.
func (e *InputError) Field(name string) (string, bool) {
	msg, ok := e.Fields[name]
	return msg, ok
}

// IsInputError reports whether err is, or wraps, an *InputError.
func IsInputError(err error) bool {
	var target *InputError
	return errors.As(err, &target)
}

func newInputError(err error) error {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return &InputError{Fields: map[string]string{"body": err.Error()}}
	}

	fields := make(map[string]string, len(verrs))
	for name, ferr := range verrs {
		if ferr != nil {
			fields[name] = ferr.Error()
		}
	}
	return &InputError{Fields: fields}
}
