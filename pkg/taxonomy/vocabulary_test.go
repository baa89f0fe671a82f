package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
)

const nuccSample = `Code,Grouping,Classification,Specialization,Definition
207R00000X,Allopathic & Osteopathic Physicians,Internal Medicine,,A physician who...
207RC0000X,Allopathic & Osteopathic Physicians,Internal Medicine,Cardiovascular Disease,
207RG0100X,Allopathic & Osteopathic Physicians,Internal Medicine,Gastroenterology,
2084N0400X,Allopathic & Osteopathic Physicians,Psychiatry & Neurology,Neurology,
363L00000X,Physician Assistants & Advanced Practice Nursing Providers,Nurse Practitioner,,
`

func writeTaxonomy(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "nucc_taxonomy_250.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write taxonomy: %v", err)
	}
	return path
}

func strPtr(s string) *string { return &s }

func TestLoad(t *testing.T) {
	path := writeTaxonomy(t, t.TempDir(), nuccSample)

	v, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{
		"Cardiovascular Disease", "Gastroenterology", "Internal Medicine",
		"Neurology", "Nurse Practitioner", "Psychiatry & Neurology",
	}
	if v.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", v.Len(), len(want))
	}
	for _, term := range want {
		if got, ok := v.Lookup(term); !ok || got != term {
			t.Errorf("Lookup(%q) = %q, %v", term, got, ok)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	v := New("Cardiology", "Internal Medicine")

	tests := []struct {
		input *string
		want  *string
	}{
		{nil, nil},
		{strPtr(""), strPtr("")},
		{strPtr("cardiology"), strPtr("Cardiology")},
		{strPtr("  INTERNAL MEDICINE "), strPtr("Internal Medicine")},
		{strPtr("Unknown Field"), strPtr("Unknown Field")},
	}
	for _, tt := range tests {
		got := v.Canonicalize(tt.input)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("Canonicalize(nil) = %q, want nil", *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("Canonicalize(%q) = %v, want %q", *tt.input, got, *tt.want)
		}
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	v := New("Cardiology")
	once := v.Canonicalize(strPtr("CARDIOLOGY"))
	twice := v.Canonicalize(once)
	if *once != *twice {
		t.Errorf("not idempotent: %q then %q", *once, *twice)
	}
}

func TestCollision_LastWriteWins(t *testing.T) {
	path := writeTaxonomy(t, t.TempDir(),
		"Classification,Specialization\n"+
			"Sleep medicine,\n"+
			"Sleep Medicine,\n")

	v, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Len() != 1 {
		t.Fatalf("Len = %d, want 1", v.Len())
	}
	if got, _ := v.Lookup("SLEEP MEDICINE"); got != "Sleep Medicine" {
		t.Errorf("Lookup = %q, want the later casing", got)
	}

	// Within a row the classification is applied after the specialization.
	path = writeTaxonomy(t, t.TempDir(),
		"Classification,Specialization\n"+
			"Pain Medicine,PAIN MEDICINE\n")
	v, _ = Load(path, nil)
	if got, _ := v.Lookup("pain medicine"); got != "Pain Medicine" {
		t.Errorf("Lookup = %q, want classification casing", got)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.csv"), nil)
	if !errors.Is(err, ingest.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
}

func TestLoad_NoTaxonomyColumns(t *testing.T) {
	path := writeTaxonomy(t, t.TempDir(), "a,b\n1,2\n")
	if _, err := Load(path, nil); err == nil {
		t.Fatal("expected error when neither column exists")
	}
}

func loadDir(t *testing.T, dir string) *Vocabulary {
	t.Helper()
	path, m, err := Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	v, err := Load(path, m)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

func TestResolve_Manifest(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "terms.csv"), []byte("kind;sub\nRadiology;Neuroradiology\n"), 0o644)

	m := DefaultManifest()
	m.ID = "custom"
	m.Version = "25.0"
	m.DataFile = "terms.csv"
	m.Format.Delimiter = ";"
	m.Format.ClassificationColumn = "kind"
	m.Format.SpecializationColumn = "sub"
	if err := WriteManifest(filepath.Join(dir, ManifestFile), m); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	v := loadDir(t, dir)
	if v.Manifest.ID != "custom" || v.Manifest.Version != "25.0" {
		t.Errorf("manifest = %+v", v.Manifest)
	}
	if _, ok := v.Lookup("neuroradiology"); !ok {
		t.Error("expected Neuroradiology in vocabulary")
	}
}

func TestResolve_DefaultManifest(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomy(t, dir, nuccSample)

	v := loadDir(t, dir)
	if v.Manifest.ID != "nucc-taxonomy" || v.Len() != 6 {
		t.Errorf("manifest %s, %d terms", v.Manifest.ID, v.Len())
	}
}

func TestLoadManifest_MissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	os.WriteFile(path, []byte("id: \"\"\nversion: x\n"), 0o644)
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestResolve_BadManifest(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ManifestFile), []byte("id: [unclosed\n"), 0o644)
	if _, _, err := Resolve(dir); err == nil {
		t.Fatal("expected error for malformed manifest")
	}
}
