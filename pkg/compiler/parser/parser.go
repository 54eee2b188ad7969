// Package parser builds an AST from the token stream.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blockrun/blockrun/pkg/compiler/ast"
	"github.com/blockrun/blockrun/pkg/compiler/lexer"
	"github.com/blockrun/blockrun/pkg/compiler/token"
)

// Precedence levels for operators.
const (
	_ int = iota
	LOWEST
	LOGIC_OR    // or
	LOGIC_AND   // and
	LOGIC_NOT   // not x
	COMPARE     // == != < <= > >=
	SUM         // + -
	PRODUCT     // * / // %
	POWER       // **
	PREFIX      // -x
	CALL        // f(x), xs.append(x)
	INDEX       // xs[i]
)

var precedences = map[token.TokenType]int{
	token.OR:       LOGIC_OR,
	token.AND:      LOGIC_AND,
	token.EQ:       COMPARE,
	token.NEQ:      COMPARE,
	token.LT:       COMPARE,
	token.LTE:      COMPARE,
	token.GT:       COMPARE,
	token.GTE:      COMPARE,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.MULT:     PRODUCT,
	token.DIV:      PRODUCT,
	token.FLOORDIV: PRODUCT,
	token.MOD:      PRODUCT,
	token.POW:      POWER,
	token.LPAREN:   CALL,
	token.DOT:      CALL,
	token.LBRACKET: INDEX,
}

// ParseError is a syntax error with source position.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Parser parses program source into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []*ParseError

	curToken  token.Token
	peekToken token.Token

	loopDepth int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*ParseError{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT_LIT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT_LIT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING_LIT, p.parseStringLiteral)
	p.registerPrefix(token.FSTRING_LIT, p.parseFStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NONE, p.parseNoneLiteral)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseListLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.MULT, p.parseInfixExpression)
	p.registerInfix(token.DIV, p.parseInfixExpression)
	p.registerInfix(token.FLOORDIV, p.parseInfixExpression)
	p.registerInfix(token.MOD, p.parseInfixExpression)
	p.registerInfix(token.POW, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NEQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LTE, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GTE, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseInfixExpression)
	p.registerInfix(token.OR, p.parseInfixExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.DOT, p.parseMethodCallExpression)

	// Read two tokens to initialize curToken and peekToken.
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// Errors returns the parse errors collected so far.
func (p *Parser) Errors() []*ParseError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses the entire program.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for p.curToken.Type != token.EOF {
		if p.curToken.Type == token.NEWLINE {
			p.nextToken()
			continue
		}
		if p.curToken.Type == token.ILLEGAL {
			p.illegalTokenError()
			p.synchronize()
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.ELIF:
		p.addError("'elif' without matching 'if'", p.curToken)
		p.synchronize()
		return nil
	case token.ELSE:
		p.addError("'else' without matching 'if'", p.curToken)
		p.synchronize()
		return nil
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.BREAK:
		if p.loopDepth == 0 {
			p.addError("'break' outside loop", p.curToken)
		}
		p.endSimpleStatement()
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		if p.loopDepth == 0 {
			p.addError("'continue' not properly in loop", p.curToken)
		}
		p.endSimpleStatement()
		return &ast.ContinueStatement{Token: p.curToken}
	case token.PASS:
		p.endSimpleStatement()
		return &ast.PassStatement{Token: p.curToken}
	case token.INDENT:
		p.addError("unexpected indent", p.curToken)
		p.synchronize()
		return nil
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses an assignment or a bare expression statement.
func (p *Parser) parseSimpleStatement() ast.Statement {
	first := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		p.synchronize()
		return nil
	}

	if isAssignOp(p.peekToken.Type) {
		opTok := p.peekToken
		switch expr.(type) {
		case *ast.Identifier, *ast.IndexExpression:
			// assignable
		default:
			p.addError("cannot assign to expression", opTok)
		}
		p.nextToken() // consume target, cur = operator
		p.nextToken() // cur = first token of value
		value := p.parseExpression(LOWEST)
		stmt := &ast.AssignStatement{
			Token:    opTok,
			Target:   expr,
			Operator: opTok.Literal,
			Value:    value,
		}
		p.endSimpleStatement()
		return stmt
	}

	p.endSimpleStatement()
	return &ast.ExpressionStatement{Token: first, Expression: expr}
}

func isAssignOp(t token.TokenType) bool {
	switch t {
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN,
		token.MULT_ASSIGN, token.DIV_ASSIGN, token.MOD_ASSIGN:
		return true
	}
	return false
}

// endSimpleStatement verifies the statement is followed by a line break.
func (p *Parser) endSimpleStatement() {
	if !p.peekTokenIs(token.NEWLINE) && !p.peekTokenIs(token.EOF) && !p.peekTokenIs(token.DEDENT) {
		p.addError(fmt.Sprintf("unexpected %s after statement", describeToken(p.peekToken)), p.peekToken)
		p.synchronize()
	}
}

// synchronize skips tokens until the start of the next logical line.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

// parseSuite parses ": NEWLINE INDENT statements DEDENT" and leaves the
// current token on the DEDENT.
func (p *Parser) parseSuite() *ast.BlockStatement {
	if !p.expectPeek(token.COLON) {
		p.synchronize()
		return nil
	}
	if !p.expectPeek(token.NEWLINE) {
		p.synchronize()
		return nil
	}
	if !p.expectPeek(token.INDENT) {
		return nil
	}

	block := &ast.BlockStatement{Token: p.curToken, Statements: []ast.Statement{}}
	p.nextToken()

	for !p.curTokenIs(token.DEDENT) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.NEWLINE) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(token.ILLEGAL) {
			p.illegalTokenError()
			p.synchronize()
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	return block
}

// parseIfStatement parses if/elif/else chains. An elif continuation becomes a
// nested IfStatement wrapped in the alternative block.
func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	stmt.Consequence = p.parseSuite()
	if stmt.Consequence == nil {
		return nil
	}

	switch p.peekToken.Type {
	case token.ELIF:
		p.nextToken()
		nested := p.parseIfStatement()
		if nested == nil {
			return nil
		}
		stmt.Alternative = &ast.BlockStatement{
			Token:      p.curToken,
			Statements: []ast.Statement{nested},
		}
	case token.ELSE:
		p.nextToken()
		stmt.Alternative = p.parseSuite()
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)

	p.loopDepth++
	stmt.Body = p.parseSuite()
	p.loopDepth--
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		p.synchronize()
		return nil
	}
	stmt.Var = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.IN) {
		p.synchronize()
		return nil
	}

	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)

	p.loopDepth++
	stmt.Body = p.parseSuite()
	p.loopDepth--
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError(fmt.Sprintf("could not parse %q as integer", p.curToken.Literal), p.curToken)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.FloatLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError(fmt.Sprintf("could not parse %q as float", p.curToken.Literal), p.curToken)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNoneLiteral() ast.Expression {
	return &ast.NoneLiteral{Token: p.curToken}
}

// parseFStringLiteral splits the raw f-string body into literal segments and
// embedded expressions. {{ and }} are brace escapes. Each embedded expression
// is parsed with a fresh sub-parser.
func (p *Parser) parseFStringLiteral() ast.Expression {
	fstr := &ast.FStringLiteral{Token: p.curToken}
	body := p.curToken.Literal

	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			fstr.Parts = append(fstr.Parts, &ast.StringLiteral{Token: p.curToken, Value: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(body); {
		switch body[i] {
		case '{':
			if i+1 < len(body) && body[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(body[i+1:], '}')
			if end < 0 {
				p.addError("f-string: expecting '}'", p.curToken)
				return nil
			}
			exprSrc := body[i+1 : i+1+end]
			if strings.TrimSpace(exprSrc) == "" {
				p.addError("f-string: empty expression not allowed", p.curToken)
				return nil
			}
			flush()
			expr := p.parseEmbeddedExpression(exprSrc)
			if expr == nil {
				return nil
			}
			fstr.Parts = append(fstr.Parts, expr)
			i += end + 2
		case '}':
			if i+1 < len(body) && body[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			p.addError("f-string: single '}' is not allowed", p.curToken)
			return nil
		default:
			lit.WriteByte(body[i])
			i++
		}
	}
	flush()

	return fstr
}

// parseEmbeddedExpression parses one f-string interpolation with its own
// lexer and parser. Errors are reported at the enclosing f-string token.
func (p *Parser) parseEmbeddedExpression(src string) ast.Expression {
	sub := New(lexer.New(src))
	expr := sub.parseExpression(LOWEST)
	if len(sub.errors) > 0 {
		p.addError(fmt.Sprintf("f-string: %s", sub.errors[0].Message), p.curToken)
		return nil
	}
	if !sub.peekTokenIs(token.NEWLINE) && !sub.peekTokenIs(token.EOF) {
		p.addError("f-string: invalid expression", p.curToken)
		return nil
	}
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	// Unary minus binds looser than ** (so -x**2 is -(x**2)) but tighter
	// than multiplication; not binds looser than comparisons.
	operandPrecedence := PRODUCT
	if p.curTokenIs(token.NOT) {
		expression.Operator = "not"
		operandPrecedence = LOGIC_NOT
	}

	p.nextToken()
	expression.Right = p.parseExpression(operandPrecedence)

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: operatorLiteral(p.curToken),
	}

	precedence := p.curPrecedence()
	if p.curTokenIs(token.POW) {
		// ** is right-associative.
		precedence--
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

// operatorLiteral normalizes keyword operators to their lowercase spelling.
func operatorLiteral(tok token.Token) string {
	switch tok.Type {
	case token.AND:
		return "and"
	case token.OR:
		return "or"
	default:
		return tok.Literal
	}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseExpressionList(token.RBRACKET)
	return list
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.addError("cannot call expression", p.curToken)
		return nil
	}
	exp := &ast.CallExpression{Token: p.curToken, Function: ident}
	exp.Arguments = p.parseExpressionList(token.RPAREN)
	return exp
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}

	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	return exp
}

// parseMethodCallExpression parses xs.append(v) style calls. Bare attribute
// access is not part of the language.
func (p *Parser) parseMethodCallExpression(left ast.Expression) ast.Expression {
	exp := &ast.MethodCallExpression{Token: p.curToken, Object: left}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Method = p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	exp.Arguments = p.parseExpressionList(token.RPAREN)

	return exp
}

// parseExpressionList parses a comma-separated expression list up to end.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(end) {
		return nil
	}

	return list
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(fmt.Sprintf("expected %s, got %s", describeTokenType(t), describeToken(p.peekToken)), p.peekToken)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.addError(fmt.Sprintf("unexpected %s", describeToken(tok)), tok)
}

func (p *Parser) illegalTokenError() {
	msg := p.curToken.Literal
	if len(msg) == 1 {
		msg = fmt.Sprintf("invalid character %q", msg)
	}
	p.addError(msg, p.curToken)
}

func (p *Parser) addError(message string, tok token.Token) {
	p.errors = append(p.errors, &ParseError{
		Message: message,
		Line:    tok.Line,
		Column:  tok.Column,
	})
}

func describeToken(tok token.Token) string {
	return describeTokenTypeWithLiteral(tok.Type, tok.Literal)
}

func describeTokenType(t token.TokenType) string {
	return describeTokenTypeWithLiteral(t, "")
}

func describeTokenTypeWithLiteral(t token.TokenType, literal string) string {
	switch t {
	case token.NEWLINE:
		return "end of line"
	case token.INDENT:
		return "an indented block"
	case token.DEDENT:
		return "end of block"
	case token.EOF:
		return "end of input"
	case token.IDENT:
		if literal != "" {
			return fmt.Sprintf("identifier %q", literal)
		}
		return "an identifier"
	default:
		if literal != "" {
			return fmt.Sprintf("token %q", literal)
		}
		return fmt.Sprintf("token %q", string(t))
	}
}
