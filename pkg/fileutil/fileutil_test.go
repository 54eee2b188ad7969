package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestReadProgramFile(t *testing.T) {
	path := writeTempFile(t, "plain.py", []byte("x = 1\nprint(x)\n"))
	got, err := ReadProgramFile(path)
	if err != nil {
		t.Fatalf("ReadProgramFile failed: %v", err)
	}
	if got != "x = 1\nprint(x)\n" {
		t.Errorf("unexpected content: %q", got)
	}
}

func TestReadProgramFileStripsBOM(t *testing.T) {
	bom := []byte{0xEF, 0xBB, 0xBF}
	path := writeTempFile(t, "bom.py", append(bom, []byte("x = 1\n")...))

	got, err := ReadProgramFile(path)
	if err != nil {
		t.Fatalf("ReadProgramFile failed: %v", err)
	}
	if got != "x = 1\n" {
		t.Errorf("BOM not stripped: %q", got)
	}
}

func TestReadProgramFileDecodesUTF16(t *testing.T) {
	// "x = 1\n" as UTF-16 little-endian with BOM.
	utf16 := []byte{0xFF, 0xFE}
	for _, r := range "x = 1\n" {
		utf16 = append(utf16, byte(r), 0x00)
	}
	path := writeTempFile(t, "utf16.py", utf16)

	got, err := ReadProgramFile(path)
	if err != nil {
		t.Fatalf("ReadProgramFile failed: %v", err)
	}
	if got != "x = 1\n" {
		t.Errorf("UTF-16 not decoded: %q", got)
	}
}

func TestReadProgramFileNormalizesCRLF(t *testing.T) {
	path := writeTempFile(t, "crlf.py", []byte("x = 1\r\ny = 2\rz = 3\n"))

	got, err := ReadProgramFile(path)
	if err != nil {
		t.Fatalf("ReadProgramFile failed: %v", err)
	}
	if got != "x = 1\ny = 2\nz = 3\n" {
		t.Errorf("line endings not normalized: %q", got)
	}
}

func TestReadProgramFileMissing(t *testing.T) {
	if _, err := ReadProgramFile("/nonexistent/program.py"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	if got := NormalizeLineEndings("a\r\nb\rc\n"); got != "a\nb\nc\n" {
		t.Errorf("unexpected result: %q", got)
	}
}
