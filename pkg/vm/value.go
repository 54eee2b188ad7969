// Package vm provides the tree-walking evaluator for block-generated
// programs. Values are held as any and may be one of: int64, float64, string,
// bool, nil (None), *List, *Range, or *Builtin.
package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// List is a mutable sequence. Lists have reference semantics: assigning a
// list to another variable aliases the same storage, and append/remove are
// visible through every alias.
type List struct {
	Elements []any
}

// Range is the lazy value produced by the range builtin. It is never
// materialized; iteration, len and sum work from the three fields.
type Range struct {
	Start, Stop, Step int64
}

// Len returns the number of values the range produces.
func (r *Range) Len() int64 {
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	}
	if r.Start <= r.Stop {
		return 0
	}
	return (r.Start - r.Stop - r.Step - 1) / -r.Step
}

// At returns the i-th value of the range. The caller checks bounds.
func (r *Range) At(i int64) int64 {
	return r.Start + i*r.Step
}

// Builtin is the value a capability name evaluates to when referenced
// without being called.
type Builtin struct {
	Name string
}

// toInt64 converts a value to int64.
func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case float64:
		return int64(val), true
	default:
		return 0, false
	}
}

// toFloat64 converts a numeric value to float64.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int64:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// isNumeric checks if a value is an int64 or float64.
func isNumeric(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	default:
		return false
	}
}

// toBool applies the language's truthiness rules: False, None, zero, the
// empty string, the empty list, and the empty range are falsy.
func toBool(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case int64:
		return val != 0
	case float64:
		return val != 0
	case string:
		return val != ""
	case *List:
		return len(val.Elements) > 0
	case *Range:
		return val.Len() > 0
	default:
		return true
	}
}

// toString renders a value the way the print builtin and string conversion
// do. Strings are rendered bare; container elements use Repr.
func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val)
	case string:
		return val
	case *List:
		return Repr(val)
	case *Range:
		return Repr(val)
	case *Builtin:
		return fmt.Sprintf("<built-in function %s>", val.Name)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Repr renders a value as a debug string for the final variable snapshot:
// strings are quoted, floats keep a trailing .0, containers render their
// elements recursively.
func Repr(v any) string {
	switch val := v.(type) {
	case string:
		return quoteString(val)
	case *List:
		parts := make([]string, 0, len(val.Elements))
		for _, e := range val.Elements {
			parts = append(parts, Repr(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Range:
		if val.Step == 1 {
			return fmt.Sprintf("range(%d, %d)", val.Start, val.Stop)
		}
		return fmt.Sprintf("range(%d, %d, %d)", val.Start, val.Stop, val.Step)
	default:
		return toString(v)
	}
}

// formatFloat renders a float with a trailing ".0" when it has no fractional
// part, so integral floats stay visually distinct from ints.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// quoteString quotes a string for Repr. Single quotes are preferred; a
// string containing a single quote but no double quote switches to double
// quotes.
func quoteString(s string) string {
	quote := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		quote = '"'
	}

	var out strings.Builder
	out.WriteByte(quote)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			out.WriteString(`\\`)
		case c == '\n':
			out.WriteString(`\n`)
		case c == '\t':
			out.WriteString(`\t`)
		case c == '\r':
			out.WriteString(`\r`)
		case c == quote:
			out.WriteByte('\\')
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}
	out.WriteByte(quote)
	return out.String()
}

// typeName returns the language-level type name used in error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case *List:
		return "list"
	case *Range:
		return "range"
	case *Builtin:
		return "builtin_function_or_method"
	default:
		return fmt.Sprintf("%T", v)
	}
}
