package dataset

import (
	"encoding/json"
	"strconv"
	"time"
)

// Value is a single typed cell. Exactly one of the payload fields is
// meaningful, selected by Kind. The zero Value is an empty string cell.
type Value struct {
	Kind ColType
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

// String constructs a string cell.
func String(s string) Value {
	return Value{Kind: ColString, Str: s}
}

// Number constructs a numeric cell.
func Number(f float64) Value {
	return Value{Kind: ColNumber, Num: f}
}

// Boolean constructs a bool cell.
func Boolean(b bool) Value {
	return Value{Kind: ColBool, Bool: b}
}

// Timestamp constructs a time cell, normalized to UTC.
func Timestamp(t time.Time) Value {
	return Value{Kind: ColTime, Time: t.UTC()}
}

// Render returns the canonical text form of the value, used for CSV export
// and display. Numbers use the shortest representation that round-trips.
func (v Value) Render() string {
	switch v.Kind {
	case ColNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ColBool:
		return strconv.FormatBool(v.Bool)
	case ColTime:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Str
	}
}

// Key returns a grouping key that is unique per (kind, value) pair, so a
// numeric 1 and the string "1" never collapse into one group.
func (v Value) Key() string {
	return string(v.Kind) + "\x00" + v.Render()
}

// Float returns the numeric payload. ok is false for non-numeric cells.
func (v Value) Float() (f float64, ok bool) {
	if v.Kind != ColNumber {
		return 0, false
	}
	return v.Num, true
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ColNumber:
		return v.Num == o.Num
	case ColBool:
		return v.Bool == o.Bool
	case ColTime:
		return v.Time.Equal(o.Time)
	default:
		return v.Str == o.Str
	}
}

// Native returns the value as a plain Go scalar suitable for JSON encoding.
func (v Value) Native() any {
	switch v.Kind {
	case ColNumber:
		return v.Num
	case ColBool:
		return v.Bool
	case ColTime:
		return v.Time.Format(time.RFC3339)
	default:
		return v.Str
	}
}

// MarshalJSON encodes the value as its native scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}
