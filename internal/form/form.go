// Package form validates submitted form values field by field, collecting
// every failure instead of stopping at the first so a response can flag all
// invalid fields at once.
package form

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Errors []FieldError

// Form wraps parsed request values. Accessor methods return the cleaned
// value and record a FieldError when the rule fails; callers check Valid
// once after reading every field.
type Form struct {
	values url.Values
	errs   Errors
}

func New(values url.Values) *Form {
	return &Form{values: values}
}

func (f *Form) fail(field, message string) {
	f.errs = append(f.errs, FieldError{Field: field, Message: message})
}

// Text returns the trimmed, control-stripped value and requires it to be
// non-empty. Whitespace-only input fails the same as missing input.
func (f *Form) Text(field string) string {
	v := clean(f.values.Get(field))
	if v == "" {
		f.fail(field, field+" is required")
	}
	return v
}

// PositiveInt requires a whole number of at least 1.
func (f *Form) PositiveInt(field string) int {
	raw := strings.TrimSpace(f.values.Get(field))
	if raw == "" {
		f.fail(field, field+" is required")
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		f.fail(field, field+" must be a positive whole number")
		return 0
	}
	return n
}

// ID requires a positive integer row id.
func (f *Form) ID(field string) int64 {
	raw := strings.TrimSpace(f.values.Get(field))
	if raw == "" {
		f.fail(field, field+" is required")
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		f.fail(field, field+" must be a valid id")
		return 0
	}
	return n
}

func (f *Form) Valid() bool {
	return len(f.errs) == 0
}

func (f *Form) Errors() Errors {
	return f.errs
}

// clean trims and strips control characters, keeping newlines and tabs so
// multi-line messages survive. CRLF pairs collapse to LF first.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
