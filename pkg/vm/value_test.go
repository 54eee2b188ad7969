package vm

import "testing"

func TestRepr(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{int64(5), "5"},
		{int64(-3), "-3"},
		{float64(2.5), "2.5"},
		{float64(10), "10.0"},
		{float64(-0.5), "-0.5"},
		{true, "True"},
		{false, "False"},
		{nil, "None"},
		{"hello", "'hello'"},
		{"it's", `"it's"`},
		{`both ' and "`, `'both \' and "'`},
		{"tab\there", `'tab\there'`},
		{"line\nbreak", `'line\nbreak'`},
		{&List{Elements: []any{}}, "[]"},
		{&List{Elements: []any{int64(1), "two", float64(3)}}, "[1, 'two', 3.0]"},
		{&List{Elements: []any{&List{Elements: []any{int64(1)}}}}, "[[1]]"},
		{&Range{Start: 0, Stop: 3, Step: 1}, "range(0, 3)"},
		{&Range{Start: 10, Stop: 0, Step: -2}, "range(10, 0, -2)"},
	}

	for _, tt := range tests {
		if got := Repr(tt.value); got != tt.want {
			t.Errorf("Repr(%#v): expected %q, got %q", tt.value, tt.want, got)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{"bare", "bare"},
		{int64(7), "7"},
		{float64(7), "7.0"},
		{float64(0.1), "0.1"},
		{true, "True"},
		{nil, "None"},
		{&List{Elements: []any{"x"}}, "['x']"},
	}

	for _, tt := range tests {
		if got := toString(tt.value); got != tt.want {
			t.Errorf("toString(%#v): expected %q, got %q", tt.value, tt.want, got)
		}
	}
}

func TestRangeLen(t *testing.T) {
	tests := []struct {
		r    Range
		want int64
	}{
		{Range{0, 5, 1}, 5},
		{Range{0, 5, 2}, 3},
		{Range{5, 0, -1}, 5},
		{Range{5, 0, -2}, 3},
		{Range{0, 0, 1}, 0},
		{Range{5, 2, 1}, 0},
		{Range{2, 5, -1}, 0},
	}

	for _, tt := range tests {
		if got := tt.r.Len(); got != tt.want {
			t.Errorf("Range%+v.Len(): expected %d, got %d", tt.r, tt.want, got)
		}
	}
}

func TestTruthinessTable(t *testing.T) {
	falsy := []any{nil, false, int64(0), float64(0), "", &List{}, &Range{0, 0, 1}}
	for _, v := range falsy {
		if toBool(v) {
			t.Errorf("expected %#v to be falsy", v)
		}
	}

	truthy := []any{true, int64(-1), float64(0.1), "x", &List{Elements: []any{nil}}, &Range{0, 1, 1}}
	for _, v := range truthy {
		if !toBool(v) {
			t.Errorf("expected %#v to be truthy", v)
		}
	}
}
