// Package forms validates user-submitted fields before they reach the store.
//
// Each entity has its own form type implementing Validator. A form either
// yields a cleaned value or an Errors map keyed by field name; any other
// error means validation itself could not run (for example a failed lookup).
package forms

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const msgRequired = "This field is required."

// MsgInvalidChoice is reported for a select value outside the offered options.
const MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

// Validator checks a submitted form and produces the value it describes.
type Validator[T any] interface {
	Validate(ctx context.Context) (T, error)
}

// Errors maps field names to messages. The empty key holds errors that do
// not belong to a single field.
type Errors map[string][]string

// Add records msg against field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the first message for field, or "".
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Has reports whether field has any message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// NonField returns the messages not tied to a field.
func (e Errors) NonField() []string {
	return e[""]
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		name := field
		if name == "" {
			name = "form"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e[field], " ")))
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// orNil returns e as an error only when it holds messages.
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func clean(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
