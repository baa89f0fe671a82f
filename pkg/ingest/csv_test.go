package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "providers.csv", []byte(
		"NPI, Provider Last Name ,cty\n"+
			"1003000126,SMITH,BOSTON\n"+
			"1003000134,,\"NEW YORK\"\n"+
			"1003000142\n"))

	s, err := ReadCSV(path, CSVFormat{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if s.Path != path {
		t.Errorf("Path = %q, want %q", s.Path, path)
	}
	if got := s.Header; len(got) != 3 || got[1] != "Provider Last Name" {
		t.Fatalf("Header = %q", got)
	}
	if s.Len() != 3 {
		t.Fatalf("rows = %d, want 3", s.Len())
	}
	if s.Rows[1][1] != nil {
		t.Errorf("empty cell should be nil, got %q", *s.Rows[1][1])
	}
	if *s.Rows[1][2] != "NEW YORK" {
		t.Errorf("quoted cell = %q", *s.Rows[1][2])
	}
	if s.Rows[2][1] != nil || s.Rows[2][2] != nil {
		t.Error("short row should be padded with nil")
	}
	if s.Column("cty") != 2 || s.Column("missing") != -1 {
		t.Error("Column lookup mismatch")
	}
}

func TestReadCSV_BOMAndDelimiter(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Classification;Specialization\nInternal Medicine;Cardiovascular Disease\n")...)
	path := writeFile(t, "taxonomy.csv", content)

	s, err := ReadCSV(path, CSVFormat{Delimiter: ";"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if s.Header[0] != "Classification" {
		t.Errorf("BOM not stripped: %q", s.Header[0])
	}
	if *s.Rows[0][1] != "Cardiovascular Disease" {
		t.Errorf("cell = %q", *s.Rows[0][1])
	}
}

func TestReadCSV_Latin1(t *testing.T) {
	// "Médecin" in ISO-8859-1.
	content := []byte("name\nM\xe9decin\n")
	path := writeFile(t, "latin1.csv", content)

	s, err := ReadCSV(path, CSVFormat{Encoding: "iso-8859-1"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if got := *s.Rows[0][0]; got != "Médecin" {
		t.Errorf("transcoded = %q, want Médecin", got)
	}
}

func TestReadCSV_UnknownEncoding(t *testing.T) {
	path := writeFile(t, "x.csv", []byte("a\n1\n"))
	if _, err := ReadCSV(path, CSVFormat{Encoding: "klingon"}); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestReadCSV_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := ReadCSV(path, CSVFormat{})
	if !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	var fe *FileError
	if !errors.As(err, &fe) || fe.Path != path {
		t.Fatalf("expected FileError with path %s, got %v", path, err)
	}
}

func TestReadCSV_Empty(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)
	if _, err := ReadCSV(path, CSVFormat{}); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestRequireFile(t *testing.T) {
	if err := RequireFile(""); !errors.Is(err, ErrMissingInput) {
		t.Errorf("empty path: got %v", err)
	}
	if err := RequireFile(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrMissingInput) {
		t.Errorf("absent file: got %v", err)
	}
	path := writeFile(t, "ok.csv", []byte("a\n"))
	if err := RequireFile(path); err != nil {
		t.Errorf("existing file: %v", err)
	}
}
