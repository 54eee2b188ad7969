// Package token defines the token types produced by the lexer.
package token

type TokenType string

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Layout tokens. The language delimits blocks by indentation, so the
	// lexer emits explicit NEWLINE / INDENT / DEDENT tokens.
	NEWLINE = "NEWLINE"
	INDENT  = "INDENT"
	DEDENT  = "DEDENT"

	// Identifiers + Literals
	IDENT       = "IDENT"       // x, total, items
	INT_LIT     = "INT_LIT"     // 123
	FLOAT_LIT   = "FLOAT_LIT"   // 1.5
	STRING_LIT  = "STRING_LIT"  // "abc" or 'abc'
	FSTRING_LIT = "FSTRING_LIT" // f"score: {x}"

	// Operators and Delimiters
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	MULT     = "*"
	DIV      = "/"
	FLOORDIV = "//"
	MOD      = "%"
	POW      = "**"

	PLUS_ASSIGN  = "+="
	MINUS_ASSIGN = "-="
	MULT_ASSIGN  = "*="
	DIV_ASSIGN   = "/="
	MOD_ASSIGN   = "%="

	EQ  = "=="
	NEQ = "!="
	LT  = "<"
	LTE = "<="
	GT  = ">"
	GTE = ">="

	LPAREN   = "("
	RPAREN   = ")"
	LBRACKET = "["
	RBRACKET = "]"
	COMMA    = ","
	COLON    = ":"
	DOT      = "."

	// Keywords
	AND      = "AND"
	OR       = "OR"
	NOT      = "NOT"
	IF       = "IF"
	ELIF     = "ELIF"
	ELSE     = "ELSE"
	FOR      = "FOR"
	WHILE    = "WHILE"
	IN       = "IN"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	PASS     = "PASS"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	NONE     = "NONE"
)

var keywords = map[string]TokenType{
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"for":      FOR,
	"while":    WHILE,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"True":     TRUE,
	"False":    FALSE,
	"None":     NONE,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
