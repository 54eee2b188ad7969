// Package lexer tokenizes block-generated program source.
//
// The surface language delimits blocks by indentation, so in addition to
// ordinary tokens the lexer emits NEWLINE at the end of each logical line and
// INDENT/DEDENT pairs when the leading whitespace of a line grows or shrinks.
// Blank lines and comment-only lines produce no tokens at all, and newlines
// inside parentheses or brackets are treated as plain whitespace.
package lexer

import (
	"strings"

	"github.com/blockrun/blockrun/pkg/compiler/token"
)

// Lexer tokenizes program source code.
type Lexer struct {
	source       string
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number

	indents     []int         // indentation stack, bottom element is always 0
	pending     []token.Token // queued layout tokens (INDENT/DEDENT)
	atLineStart bool
	parenDepth  int
}

// New creates a new Lexer.
func New(input string) *Lexer {
	source := input
	// A final newline guarantees every logical line is NEWLINE-terminated,
	// which keeps the end-of-file dedent handling in one place.
	if input != "" && !strings.HasSuffix(input, "\n") {
		input += "\n"
	}
	l := &Lexer{
		source:      source,
		input:       input,
		line:        1,
		column:      0,
		indents:     []int{0},
		atLineStart: true,
	}
	l.readChar()
	return l
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	for {
		if len(l.pending) > 0 {
			tok := l.pending[0]
			l.pending = l.pending[1:]
			return tok
		}

		if l.atLineStart && l.parenDepth == 0 {
			l.handleIndentation()
			continue
		}

		l.skipWhitespace()

		if l.ch == '#' {
			l.skipComment()
			continue
		}

		var tok token.Token
		tok.Line = l.line
		tok.Column = l.column

		switch l.ch {
		case '\n':
			tok.Type = token.NEWLINE
			tok.Literal = "\n"
			l.atLineStart = true
		case '=':
			if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.EQ)
			} else {
				tok = l.newToken(token.ASSIGN, l.ch)
			}
		case '+':
			if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.PLUS_ASSIGN)
			} else {
				tok = l.newToken(token.PLUS, l.ch)
			}
		case '-':
			if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.MINUS_ASSIGN)
			} else {
				tok = l.newToken(token.MINUS, l.ch)
			}
		case '*':
			if l.peekChar() == '*' {
				tok = l.makeTwoCharToken(token.POW)
			} else if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.MULT_ASSIGN)
			} else {
				tok = l.newToken(token.MULT, l.ch)
			}
		case '/':
			if l.peekChar() == '/' {
				tok = l.makeTwoCharToken(token.FLOORDIV)
			} else if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.DIV_ASSIGN)
			} else {
				tok = l.newToken(token.DIV, l.ch)
			}
		case '%':
			if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.MOD_ASSIGN)
			} else {
				tok = l.newToken(token.MOD, l.ch)
			}
		case '!':
			if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.NEQ)
			} else {
				tok = l.newToken(token.ILLEGAL, l.ch)
			}
		case '<':
			if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.LTE)
			} else {
				tok = l.newToken(token.LT, l.ch)
			}
		case '>':
			if l.peekChar() == '=' {
				tok = l.makeTwoCharToken(token.GTE)
			} else {
				tok = l.newToken(token.GT, l.ch)
			}
		case '(':
			l.parenDepth++
			tok = l.newToken(token.LPAREN, l.ch)
		case ')':
			if l.parenDepth > 0 {
				l.parenDepth--
			}
			tok = l.newToken(token.RPAREN, l.ch)
		case '[':
			l.parenDepth++
			tok = l.newToken(token.LBRACKET, l.ch)
		case ']':
			if l.parenDepth > 0 {
				l.parenDepth--
			}
			tok = l.newToken(token.RBRACKET, l.ch)
		case ',':
			tok = l.newToken(token.COMMA, l.ch)
		case ':':
			tok = l.newToken(token.COLON, l.ch)
		case '.':
			tok = l.newToken(token.DOT, l.ch)
		case '"', '\'':
			literal, ok := l.readString(l.ch)
			tok.Literal = literal
			if ok {
				tok.Type = token.STRING_LIT
			} else {
				tok.Type = token.ILLEGAL
				tok.Literal = "unterminated string literal"
			}
		case 0:
			tok.Literal = ""
			tok.Type = token.EOF
			return tok
		default:
			if (l.ch == 'f' || l.ch == 'F') && (l.peekChar() == '"' || l.peekChar() == '\'') {
				l.readChar() // consume 'f'
				literal, ok := l.readString(l.ch)
				tok.Literal = literal
				if ok {
					tok.Type = token.FSTRING_LIT
				} else {
					tok.Type = token.ILLEGAL
					tok.Literal = "unterminated string literal"
				}
				l.readChar()
				return tok
			}
			if isLetter(l.ch) {
				tok.Literal = l.readIdentifier()
				tok.Type = token.LookupIdent(tok.Literal)
				return tok
			}
			if isDigit(l.ch) {
				return l.readNumber(tok.Line, tok.Column)
			}
			tok = l.newToken(token.ILLEGAL, l.ch)
		}

		l.readChar()
		return tok
	}
}

// handleIndentation measures the leading whitespace of the next logical line
// and queues INDENT/DEDENT tokens. Blank and comment-only lines are consumed
// without producing tokens. At end of file the indentation stack is unwound.
func (l *Lexer) handleIndentation() {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			if l.ch == '\t' {
				width += 8 - width%8
			} else {
				width++
			}
			l.readChar()
		}

		if l.ch == '#' {
			l.skipComment()
		}
		if l.ch == '\n' {
			l.readChar()
			continue // blank line, measure the next one
		}
		if l.ch == 0 {
			for len(l.indents) > 1 {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, token.Token{Type: token.DEDENT, Line: l.line, Column: l.column})
			}
			l.atLineStart = false
			return
		}

		top := l.indents[len(l.indents)-1]
		switch {
		case width > top:
			l.indents = append(l.indents, width)
			l.pending = append(l.pending, token.Token{Type: token.INDENT, Line: l.line, Column: l.column})
		case width < top:
			for len(l.indents) > 1 && width < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, token.Token{Type: token.DEDENT, Line: l.line, Column: l.column})
			}
			if width != l.indents[len(l.indents)-1] {
				l.pending = append(l.pending, token.Token{
					Type:    token.ILLEGAL,
					Literal: "unindent does not match any outer indentation level",
					Line:    l.line,
					Column:  l.column,
				})
			}
		}
		l.atLineStart = false
		return
	}
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer or float literal.
func (l *Lexer) readNumber(line, column int) token.Token {
	position := l.position
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	literal := l.input[position:l.position]
	if isFloat {
		return token.Token{Type: token.FLOAT_LIT, Literal: literal, Line: line, Column: column}
	}
	return token.Token{Type: token.INT_LIT, Literal: literal, Line: line, Column: column}
}

// readString reads a string literal delimited by quote, processing backslash
// escapes. Returns false if the literal is unterminated.
func (l *Lexer) readString(quote byte) (string, bool) {
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case quote:
			return out.String(), true
		case 0, '\n':
			return out.String(), false
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '\\':
				out.WriteByte('\\')
			case '\'':
				out.WriteByte('\'')
			case '"':
				out.WriteByte('"')
			case 0:
				return out.String(), false
			default:
				// Unknown escape: keep the backslash verbatim.
				out.WriteByte('\\')
				out.WriteByte(l.ch)
			}
		default:
			out.WriteByte(l.ch)
		}
	}
}

// skipComment consumes a '#' comment up to (not including) the newline.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipWhitespace skips spaces and tabs. Inside brackets newlines are
// whitespace too.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || (l.parenDepth > 0 && l.ch == '\n') {
		l.readChar()
	}
}

// newToken creates a new single-character token.
func (l *Lexer) newToken(tokenType token.TokenType, ch byte) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Line: l.line, Column: l.column}
}

// makeTwoCharToken consumes the peeked character and builds a two-char token.
func (l *Lexer) makeTwoCharToken(tokenType token.TokenType) token.Token {
	line, column := l.line, l.column
	ch := l.ch
	l.readChar()
	return token.Token{Type: tokenType, Literal: string(ch) + string(l.ch), Line: line, Column: column}
}

// isLetter checks if a character can start or continue an identifier.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if a character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// GetSource returns the original source code.
func (l *Lexer) GetSource() string {
	return l.source
}
