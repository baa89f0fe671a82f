package taxonomy

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
)

// Vocabulary is the set of official specialty names, keyed by their
// upper-cased form. It is built once and never mutated afterwards.
type Vocabulary struct {
	Manifest *Manifest
	terms    map[string]string
}

// Key is the lookup form of a specialty: trimmed and upper-cased.
func Key(term string) string {
	return strings.ToUpper(strings.TrimSpace(term))
}

// New builds a vocabulary from canonical terms. On a key collision the
// later term wins.
func New(terms ...string) *Vocabulary {
	v := &Vocabulary{Manifest: DefaultManifest(), terms: make(map[string]string, len(terms))}
	for _, t := range terms {
		v.add(t)
	}
	return v
}

func (v *Vocabulary) add(term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	key := Key(term)
	prev, exists := v.terms[key]
	v.terms[key] = term
	return exists && prev != term
}

// Load reads a taxonomy CSV described by m. Rows are applied in file order,
// specialization before classification, so the last casing seen for a key wins.
func Load(path string, m *Manifest) (*Vocabulary, error) {
	if m == nil {
		m = DefaultManifest()
	}
	sheet, err := ingest.ReadCSV(path, m.Format.CSVFormat)
	if err != nil {
		return nil, err
	}

	classIdx := sheet.Column(m.Format.ClassificationColumn)
	specIdx := sheet.Column(m.Format.SpecializationColumn)
	if classIdx < 0 && specIdx < 0 {
		return nil, fmt.Errorf("taxonomy %s: columns %q and %q not found in header %v",
			path, m.Format.ClassificationColumn, m.Format.SpecializationColumn, sheet.Header)
	}

	v := &Vocabulary{Manifest: m, terms: make(map[string]string)}
	var collisions int
	for _, row := range sheet.Rows {
		for _, idx := range []int{specIdx, classIdx} {
			if idx < 0 || row[idx] == nil {
				continue
			}
			if v.add(*row[idx]) {
				collisions++
			}
		}
	}

	if collisions > 0 {
		slog.Warn("specialty casing collisions", "taxonomy", m.ID, "collisions", collisions)
	}
	return v, nil
}

// Canonicalize maps a raw specialty to its official casing. Nil and empty
// values pass through; unknown specialties are returned unchanged.
func (v *Vocabulary) Canonicalize(raw *string) *string {
	if raw == nil || *raw == "" || v == nil {
		return raw
	}
	if canon, ok := v.Lookup(*raw); ok {
		return &canon
	}
	return raw
}

// Lookup returns the canonical casing of term.
func (v *Vocabulary) Lookup(term string) (string, bool) {
	canon, ok := v.terms[Key(term)]
	return canon, ok
}

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}
