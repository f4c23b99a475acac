// Package table provides the column-oriented in-memory representation
// shared by every dataset the portal loads: a typed Value union, a
// Column vector, and the Table/View access pattern used by the loader,
// the pivot planner and the expression evaluator.
package table

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the dynamic type carried by a Value.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindReal
	KindDate
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindDate:
		return "date"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a small tagged union holding one cell. The zero Value is an
// empty text cell; an absent cell has Absent set (see AbsentValue).
type Value struct {
	Kind    Kind
	Absent  bool
	Text    string
	Integer int64
	Real    float64
	Date    time.Time
	Boolean bool
}

// AbsentValue is the canonical absent cell.
var AbsentValue = Value{Absent: true}

func Text(s string) Value { return Value{Kind: KindText, Text: s} }

func Integer(i int64) Value { return Value{Kind: KindInteger, Integer: i} }

func Real(f float64) Value { return Value{Kind: KindReal, Real: f} }

func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

func Boolean(b bool) Value { return Value{Kind: KindBoolean, Boolean: b} }

// Numeric reports whether the value can be read as a float64, coercing
// integer and boolean cells. Absent and non-numeric kinds return ok=false.
func (v Value) Numeric() (float64, bool) {
	if v.Absent {
		return 0, false
	}
	switch v.Kind {
	case KindInteger:
		return float64(v.Integer), true
	case KindReal:
		return v.Real, true
	case KindBoolean:
		if v.Boolean {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Raw renders the value for filter matching and CSV/JSON round-tripping:
// the empty string for absent cells, otherwise the natural text form.
func (v Value) Raw() string {
	if v.Absent {
		return ""
	}
	switch v.Kind {
	case KindText:
		return v.Text
	case KindInteger:
		return strconv.FormatInt(v.Integer, 10)
	case KindReal:
		return strconv.FormatFloat(v.Real, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.Boolean)
	case KindDate:
		return v.Date.Format("2006-01-02")
	default:
		return ""
	}
}

// Display is Raw, except absent renders as the sentinel used for grouping
// and pivot headers, matching the "Células Vazias" bucket from the spec.
func (v Value) Display() string {
	if v.Absent {
		return SentinelEmptyCells
	}
	return v.Raw()
}

// SentinelEmptyCells is the label assigned to absent values that fall
// into a pivot row/column group, always sorted after every real value.
const SentinelEmptyCells = "Células Vazias"

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.Kind, v.Raw())
}
