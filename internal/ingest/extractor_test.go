package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSupportedExtensionsSorted(t *testing.T) {
	want := []string{".doc", ".docx", ".pdf", ".txt"}
	if got := SupportedExtensions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("SupportedExtensions() = %v, want %v", got, want)
	}
}

func TestForExtensionNormalizesInput(t *testing.T) {
	for _, ext := range []string{"pdf", ".pdf", "PDF", " .Pdf "} {
		if _, err := ForExtension(ext); err != nil {
			t.Fatalf("ForExtension(%q) failed: %v", ext, err)
		}
	}
}

func TestForExtensionUnsupported(t *testing.T) {
	_, err := ForExtension(".md")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("ForExtension(.md) = %v, want ErrUnsupportedType", err)
	}
	if !strings.Contains(err.Error(), ".md") {
		t.Fatalf("error should name the rejected extension: %v", err)
	}
	if !strings.Contains(err.Error(), ".pdf") || !strings.Contains(err.Error(), ".txt") {
		t.Fatalf("error should list the supported set: %v", err)
	}
}

func TestExtractFileText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	content := "Alice lives in Paris.\nBob lives in Lyon.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}

	got, err := ExtractFile(path, "txt")
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if got != content {
		t.Fatalf("extracted text altered: %q", got)
	}
}

func TestExtractFileUnsupportedType(t *testing.T) {
	if _, err := ExtractFile("whatever.md", "md"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("ExtractFile with unsupported type = %v, want ErrUnsupportedType", err)
	}
}

func TestExtractFileMissingFile(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.txt"), "txt")
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("missing file = %v, want ErrExtraction", err)
	}
}

func TestExtractFileCorruptPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatalf("write fixture failed: %v", err)
	}
	if _, err := ExtractFile(path, "pdf"); !errors.Is(err, ErrExtraction) {
		t.Fatalf("corrupt pdf = %v, want ErrExtraction", err)
	}
}

func TestDocxMarkupStripping(t *testing.T) {
	raw := `<w:p><w:r><w:t>Alice lives in Paris.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Bob &amp; Carol live in Lyon.</w:t></w:r></w:p>`
	got := stripDocxMarkup(raw)
	want := "Alice lives in Paris.\nBob & Carol live in Lyon."
	if got != want {
		t.Fatalf("stripDocxMarkup = %q, want %q", got, want)
	}
}
