// Package compiler provides the compilation pipeline for block-generated
// programs. It chains the lexer and parser into a single entry point:
//
//	program, err := compiler.Compile(source)
//
// The returned error, if any, is a *CompileError carrying line/column
// information and a source context block.
package compiler

import (
	"github.com/blockrun/blockrun/pkg/compiler/ast"
	"github.com/blockrun/blockrun/pkg/compiler/lexer"
	"github.com/blockrun/blockrun/pkg/compiler/parser"
)

// Compile parses source code into an AST. On a syntax error the first
// diagnostic is returned; the parser does not attempt repair beyond
// resynchronizing at line boundaries.
func Compile(source string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)

	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		return nil, &CompileError{
			Message: first.Message,
			Line:    first.Line,
			Column:  first.Column,
			Context: GenerateErrorContext(source, first.Line, first.Column),
		}
	}

	return program, nil
}
