package hymnal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSourceTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestReadSourceFile_MissingFile(t *testing.T) {
	if _, err := ReadSourceFile(filepath.Join(t.TempDir(), "nope.xml"), 0); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestReadSourceFile_StripsBOM(t *testing.T) {
	body := `<hymnal id="x" title="y"/>`
	p := writeSourceTemp(t, t.TempDir(), "a.xml", "\xEF\xBB\xBF"+body)

	got, err := ReadSourceFile(p, 0)
	if err != nil {
		t.Fatalf("ReadSourceFile error: %v", err)
	}
	if string(got) != body {
		t.Fatalf("BOM not stripped: %q", got)
	}
	if _, err := Parse(got); err != nil {
		t.Fatalf("Parse after read: %v", err)
	}
}

func TestReadSource_Limit(t *testing.T) {
	in := strings.Repeat("a", 10)

	if got, err := ReadSource(strings.NewReader(in), 10); err != nil || len(got) != 10 {
		t.Fatalf("at limit: got %d bytes, err=%v", len(got), err)
	}
	if _, err := ReadSource(strings.NewReader(in), 9); !errors.Is(err, ErrSourceTooLarge) {
		t.Fatalf("expected ErrSourceTooLarge, got %v", err)
	}
	if got, err := ReadSource(strings.NewReader(in), 0); err != nil || string(got) != in {
		t.Fatalf("unlimited: got %q, err=%v", got, err)
	}
}
