// Package blocks defines the block palette: the categorized catalog of
// statement and expression templates a visual editor offers. The palette is
// purely descriptive data; nothing here executes.
package blocks

// Block is one palette entry. Template uses {name} placeholders that the
// editor substitutes from Inputs.
type Block struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Template        string   `json:"template"`
	Inputs          []string `json:"inputs"`
	AcceptsChildren bool     `json:"accepts_children,omitempty"`
	HasElse         bool     `json:"has_else,omitempty"`
	IsExpression    bool     `json:"is_expression,omitempty"`
}

// Category groups related blocks under a display color and icon.
type Category struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Icon   string  `json:"icon"`
	Blocks []Block `json:"blocks"`
}

// Catalog returns the full palette in display order.
func Catalog() []Category {
	return []Category{
		{
			Name:  "variables",
			Color: "#8b5cf6",
			Icon:  "x",
			Blocks: []Block{
				{ID: "var_create", Label: "Create variable", Template: "{name} = {value}", Inputs: []string{"name", "value"}},
				{ID: "var_set", Label: "Set variable", Template: "{name} = {value}", Inputs: []string{"name", "value"}},
				{ID: "var_change", Label: "Change by", Template: "{name} += {value}", Inputs: []string{"name", "value"}},
				{ID: "var_print", Label: "Print variable", Template: "print({name})", Inputs: []string{"name"}},
				{ID: "var_multiply", Label: "Multiply by", Template: "{name} *= {value}", Inputs: []string{"name", "value"}},
				{ID: "var_divide", Label: "Divide by", Template: "{name} /= {value}", Inputs: []string{"name", "value"}},
			},
		},
		{
			Name:  "control",
			Color: "#f59e0b",
			Icon:  "↻",
			Blocks: []Block{
				{ID: "if_block", Label: "If", Template: "if {condition}:", Inputs: []string{"condition"}, AcceptsChildren: true},
				{ID: "if_else_block", Label: "If-Else", Template: "if {condition}:", Inputs: []string{"condition"}, AcceptsChildren: true, HasElse: true},
				{ID: "repeat_times", Label: "Repeat times", Template: "for _ in range({times}):", Inputs: []string{"times"}, AcceptsChildren: true},
				{ID: "for_range", Label: "For i in range", Template: "for {var} in range({start}, {end}):", Inputs: []string{"var", "start", "end"}, AcceptsChildren: true},
				{ID: "while_block", Label: "While", Template: "while {condition}:", Inputs: []string{"condition"}, AcceptsChildren: true},
				{ID: "break_block", Label: "Break", Template: "break", Inputs: []string{}},
				{ID: "continue_block", Label: "Continue", Template: "continue", Inputs: []string{}},
			},
		},
		{
			Name:  "output",
			Color: "#10b981",
			Icon:  "⎙",
			Blocks: []Block{
				{ID: "print_msg", Label: "Print", Template: "print({message})", Inputs: []string{"message"}},
				{ID: "print_multiple", Label: "Print multiple", Template: "print({item1}, {item2})", Inputs: []string{"item1", "item2"}},
				{ID: "print_input", Label: "Input", Template: "{name} = input({prompt})", Inputs: []string{"name", "prompt"}},
				{ID: "print_fstring", Label: "Print formatted", Template: "print(f\"{text}{{name}}\")", Inputs: []string{"text", "name"}},
			},
		},
		{
			Name:  "operators",
			Color: "#3b82f6",
			Icon:  "+",
			Blocks: []Block{
				{ID: "compare", Label: "Compare", Template: "{a} {op} {b}", Inputs: []string{"a", "op", "b"}, IsExpression: true},
				{ID: "math_add", Label: "Add", Template: "{a} + {b}", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "math_subtract", Label: "Subtract", Template: "{a} - {b}", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "math_multiply", Label: "Multiply", Template: "{a} * {b}", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "math_divide", Label: "Divide", Template: "{a} / {b}", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "math_modulo", Label: "Remainder (mod)", Template: "{a} % {b}", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "math_power", Label: "Power", Template: "{a} ** {b}", Inputs: []string{"a", "b"}, IsExpression: true},
			},
		},
		{
			Name:  "logic",
			Color: "#ec4899",
			Icon:  "◇",
			Blocks: []Block{
				{ID: "logic_and", Label: "And", Template: "{a} and {b}", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "logic_or", Label: "Or", Template: "{a} or {b}", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "logic_not", Label: "Not", Template: "not {a}", Inputs: []string{"a"}, IsExpression: true},
				{ID: "logic_true", Label: "True", Template: "True", Inputs: []string{}, IsExpression: true},
				{ID: "logic_false", Label: "False", Template: "False", Inputs: []string{}, IsExpression: true},
			},
		},
		{
			Name:  "lists",
			Color: "#06b6d4",
			Icon:  "[]",
			Blocks: []Block{
				{ID: "list_create", Label: "Create list", Template: "{name} = []", Inputs: []string{"name"}},
				{ID: "list_create_items", Label: "Create list with", Template: "{name} = [{items}]", Inputs: []string{"name", "items"}},
				{ID: "list_append", Label: "Add to list", Template: "{name}.append({value})", Inputs: []string{"name", "value"}},
				{ID: "list_get", Label: "Get item at", Template: "{name}[{index}]", Inputs: []string{"name", "index"}, IsExpression: true},
				{ID: "list_set", Label: "Set item at", Template: "{name}[{index}] = {value}", Inputs: []string{"name", "index", "value"}},
				{ID: "list_length", Label: "Length of list", Template: "len({name})", Inputs: []string{"name"}, IsExpression: true},
				{ID: "list_for", Label: "For each in list", Template: "for {item} in {list}:", Inputs: []string{"item", "list"}, AcceptsChildren: true},
				{ID: "list_remove", Label: "Remove from list", Template: "{name}.remove({value})", Inputs: []string{"name", "value"}},
			},
		},
		{
			Name:  "functions",
			Color: "#f97316",
			Icon:  "fn",
			Blocks: []Block{
				{ID: "func_abs", Label: "Absolute value", Template: "abs({value})", Inputs: []string{"value"}, IsExpression: true},
				{ID: "func_max", Label: "Maximum", Template: "max({a}, {b})", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "func_min", Label: "Minimum", Template: "min({a}, {b})", Inputs: []string{"a", "b"}, IsExpression: true},
				{ID: "func_round", Label: "Round", Template: "round({value})", Inputs: []string{"value"}, IsExpression: true},
				{ID: "func_int", Label: "Convert to int", Template: "int({value})", Inputs: []string{"value"}, IsExpression: true},
				{ID: "func_str", Label: "Convert to string", Template: "str({value})", Inputs: []string{"value"}, IsExpression: true},
				{ID: "func_sum", Label: "Sum of list", Template: "sum({list})", Inputs: []string{"list"}, IsExpression: true},
			},
		},
	}
}

// Lookup finds a block by id across all categories.
func Lookup(id string) (Block, bool) {
	for _, cat := range Catalog() {
		for _, b := range cat.Blocks {
			if b.ID == id {
				return b, true
			}
		}
	}
	return Block{}, false
}
