// Package fileutil provides file system utility functions.
package fileutil

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadProgramFile reads a program source file and normalizes it to plain
// UTF-8 text: a UTF-8/UTF-16 byte order mark is stripped and decoded, and
// CRLF line endings become LF.
//
// Parameters:
//   - path: The file to read
//
// Returns:
//   - string: The normalized source text
//   - error: Error if the file cannot be read or decoded
func ReadProgramFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read program file %s: %w", path, err)
	}

	// BOMOverride detects UTF-8/UTF-16 BOMs and falls back to plain UTF-8.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return "", fmt.Errorf("failed to decode program file %s: %w", path, err)
	}

	return NormalizeLineEndings(string(decoded)), nil
}

// NormalizeLineEndings converts CRLF and bare CR line endings to LF.
func NormalizeLineEndings(s string) string {
	s = string(bytes.ReplaceAll([]byte(s), []byte("\r\n"), []byte("\n")))
	return string(bytes.ReplaceAll([]byte(s), []byte("\r"), []byte("\n")))
}
