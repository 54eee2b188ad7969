// Package compiler provides the compilation pipeline for block-generated
// programs. This file defines the CompileError type for structured error
// reporting.
package compiler

import (
	"fmt"
	"strings"
)

// CompileError represents a syntax error with location information.
type CompileError struct {
	// Message is the human-readable error description.
	Message string

	// Line is the 1-indexed line number where the error occurred.
	Line int

	// Column is the 1-indexed column number where the error occurred.
	Column int

	// Context contains the source code around the error location,
	// with a pointer (^) indicating the error column.
	Context string
}

// Error implements the error interface. The message is kept to a single line
// so it can be relayed verbatim in an execution result.
func (e *CompileError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Detail returns the error message followed by the source context block.
func (e *CompileError) Detail() string {
	if e.Context == "" {
		return e.Error()
	}
	return e.Error() + "\n" + e.Context
}

// GenerateErrorContext generates source code context around an error
// location: two lines before and after, with line numbers and a pointer (^)
// under the error column.
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	var buf strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		lineNum := i + 1
		lineContent := lines[i]

		if lineNum == line {
			buf.WriteString(fmt.Sprintf("> %*d | %s\n", lineNumWidth, lineNum, lineContent))
			pointerIndent := 2 + lineNumWidth + 3
			if column > 0 {
				buf.WriteString(fmt.Sprintf("%s%s^\n", strings.Repeat(" ", pointerIndent), strings.Repeat(" ", column-1)))
			} else {
				buf.WriteString(fmt.Sprintf("%s^\n", strings.Repeat(" ", pointerIndent)))
			}
		} else {
			buf.WriteString(fmt.Sprintf("  %*d | %s\n", lineNumWidth, lineNum, lineContent))
		}
	}

	return buf.String()
}
