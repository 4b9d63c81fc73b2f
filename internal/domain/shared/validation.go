package shared

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format accepted on every date field.
const DateLayout = "2006-01-02"

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every violation found while validating one input,
// so that callers can report all of them at once instead of the first.
type ValidationErrors []FieldError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Add records a violation for field
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Required records a violation when value is blank
func (v *ValidationErrors) Required(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, message)
	}
}

// NonNegative records a violation when d is set and negative
func (v *ValidationErrors) NonNegative(field string, d *decimal.Decimal, message string) {
	if d != nil && d.IsNegative() {
		v.Add(field, message)
	}
}

// OneOf records a violation when value is not one of allowed
func (v *ValidationErrors) OneOf(field, value string, allowed []string, message string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, message)
}

// Err returns nil when no violation was recorded
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ParseDate parses a YYYY-MM-DD value into a UTC midnight time.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

// ParseOptionalDate parses value when not blank. A blank value yields nil.
func ParseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date.
func Today() time.Time {
	return DateOf(time.Now())
}

// Date parses an optional YYYY-MM-DD field. A malformed value records a
// violation and yields nil; a blank one yields nil silently.
func (v *ValidationErrors) Date(field, value string) *time.Time {
	t, err := ParseOptionalDate(value)
	if err != nil {
		v.Add(field, "Invalid date, use YYYY-MM-DD.")
		return nil
	}
	return t
}

// DateOrZero dereferences t, returning the zero time for nil
func DateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
