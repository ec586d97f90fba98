// Package model defines the ordered record and table types shared by the
// store, extraction, and reconciliation layers.
package model

import (
	"fmt"
	"strconv"
)

// Value is a single cell value: a string, a float64, or nil.
type Value = any

// Equal reports whether two values are equal by exact type and value.
// A string "100" never equals the number 100. Two nils are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return a == b
}

// ParseValue converts a raw cell string into a typed Value.
// Empty cells become nil, numeric cells become float64, everything else
// stays a string.
func ParseValue(raw string) Value {
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

// FormatValue renders a Value back into its cell representation.
// The inverse of ParseValue for the three canonical types.
func FormatValue(v Value) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	default:
		return fmt.Sprint(tv)
	}
}
