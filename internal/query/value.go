package query

import (
	"cmp"
	"strconv"
	"strings"
)

// Kind is the native type of a record field.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindString
)

// Value is a single field value read from a record. Numbers compare
// numerically, strings lexicographically; a missing value (an absent optional
// field) sorts before everything else and never satisfies a constraint.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Number wraps a numeric field value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps a string field value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Missing is the value of an absent optional field.
func Missing() Value { return Value{} }

// OptionalString wraps a nullable string field.
func OptionalString(s *string) Value {
	if s == nil {
		return Missing()
	}
	return String(*s)
}

// OptionalNumber wraps a nullable numeric field.
func OptionalNumber(f *float64) Value {
	if f == nil {
		return Missing()
	}
	return Number(*f)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Compare orders two values of the same field.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmp.Compare(v.kind, o.kind)
	}
	switch v.kind {
	case KindNumber:
		return cmp.Compare(v.num, o.num)
	case KindString:
		return strings.Compare(v.str, o.str)
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}
