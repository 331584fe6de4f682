package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a numeric bill field (amount, vat, pct).
//
// An unset Number is omitted from JSON. A value that could not be coerced to a
// number keeps its raw text and is sent as a JSON string, leaving the rejection
// to the record store.
type Number struct {
	value decimal.Decimal
	raw   string
	set   bool
}

// NewNumber creates a Number from an integer value
func NewNumber(v int64) Number {
	return Number{value: decimal.NewFromInt(v), set: true}
}

// NewNumberFromFloat creates a Number from a float value
func NewNumberFromFloat(v float64) Number {
	return Number{value: decimal.NewFromFloat(v), set: true}
}

// ParseNumber coerces raw form input into a Number. It never fails: blank input
// yields an unset Number and unparsable input is kept verbatim.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{raw: s, set: true}
	}
	return Number{value: d, set: true}
}

// IsZero reports whether the number is absent. Used by the omitzero JSON option.
func (n Number) IsZero() bool {
	return !n.set
}

// IsSet reports whether a value, valid or not, is present
func (n Number) IsSet() bool {
	return n.set
}

// Valid reports whether the number is present and numeric
func (n Number) Valid() bool {
	return n.set && n.raw == ""
}

// IsNegative reports whether a valid number is below zero
func (n Number) IsNegative() bool {
	return n.Valid() && n.value.IsNegative()
}

// Decimal returns the numeric value (zero when unset or invalid)
func (n Number) Decimal() decimal.Decimal {
	return n.value
}

// Float64 returns the numeric value as a float
func (n Number) Float64() float64 {
	f, _ := n.value.Float64()
	return f
}

// String returns the form representation: the number, the raw text, or ""
func (n Number) String() string {
	if !n.set {
		return ""
	}
	if n.raw != "" {
		return n.raw
	}
	return n.value.String()
}

// Equal compares two numbers by value, or by raw text when either is invalid
func (n Number) Equal(other Number) bool {
	if n.set != other.set {
		return false
	}
	if !n.set {
		return true
	}
	if n.raw != "" || other.raw != "" {
		return n.raw == other.raw
	}
	return n.value.Equal(other.value)
}

// MarshalJSON encodes valid numbers as JSON numbers and raw input as a string
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	if n.raw != "" {
		return json.Marshal(n.raw)
	}
	return []byte(n.value.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode number: %w", err)
		}
		*n = ParseNumber(s)
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("failed to decode number %s: %w", data, err)
	}
	*n = Number{value: d, set: true}
	return nil
}

// Value implements driver.Valuer; numbers are stored as text
func (n Number) Value() (driver.Value, error) {
	if !n.set {
		return nil, nil
	}
	return n.String(), nil
}

// Scan implements sql.Scanner
func (n *Number) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*n = Number{}
	case string:
		*n = ParseNumber(v)
	case []byte:
		*n = ParseNumber(string(v))
	case int64:
		*n = NewNumber(v)
	case float64:
		*n = NewNumberFromFloat(v)
	default:
		return fmt.Errorf("unsupported number source type %T", src)
	}
	return nil
}
