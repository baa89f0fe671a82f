package provider

import (
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
	"github.com/hazyhaar/provider-directory/pkg/normalize"
	"github.com/hazyhaar/provider-directory/pkg/taxonomy"
)

// Normalizer turns raw export rows into canonical records. It holds no
// mutable state and can be shared.
type Normalizer struct {
	vocab          *taxonomy.Vocabulary
	composeAddress bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithFullAddress adds the composed full_address column.
func WithFullAddress(on bool) Option {
	return func(n *Normalizer) { n.composeAddress = on }
}

// NewNormalizer returns a Normalizer canonicalizing specialties against vocab.
// A nil vocabulary leaves specialties as read.
func NewNormalizer(vocab *taxonomy.Vocabulary, opts ...Option) *Normalizer {
	n := &Normalizer{vocab: vocab}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize normalizes every row. Rows are never dropped and absent
// columns stay nil.
func (n *Normalizer) Normalize(rows []RawRecord) *Table {
	var headers []string
	seen := make(map[string]bool)
	for _, raw := range rows {
		for _, c := range raw {
			if !seen[c.Name] {
				seen[c.Name] = true
				headers = append(headers, c.Name)
			}
		}
	}
	t := &Table{Columns: n.columns(headers), Records: make([]Record, len(rows))}
	for i, raw := range rows {
		t.Records[i] = n.Record(raw)
	}
	return t
}

// NormalizeSheet normalizes a sheet read from disk. The header decides the
// table's columns, so an export with no data rows keeps its schema.
func (n *Normalizer) NormalizeSheet(s *ingest.Sheet) *Table {
	t := &Table{Columns: n.columns(s.Header), Records: make([]Record, len(s.Rows))}
	for i, row := range s.Rows {
		raw := make(RawRecord, len(s.Header))
		for j, h := range s.Header {
			raw[j] = Column{Name: h, Value: row[j]}
		}
		t.Records[i] = n.Record(raw)
	}
	return t
}

func (n *Normalizer) columns(headers []string) []string {
	cols := RenameAll(headers)
	present := make(map[string]bool, len(cols))
	for _, c := range cols {
		present[c] = true
	}
	if !present[FieldSecSpecAll] {
		cols = append(cols, FieldSecSpecAll)
	}
	if n.composeAddress && !present[FieldFullAddr] {
		cols = append(cols, FieldFullAddr)
	}
	return cols
}

// Record normalizes a single row.
func (n *Normalizer) Record(raw RawRecord) Record {
	var rec Record
	assigned := make(map[string]bool, len(raw))
	for _, c := range raw {
		name := Rename(c.Name)
		v := normalize.Trim(c.Value)
		// Two headers can share a canonical name; the first non-null wins.
		if assigned[name] && (v == nil || rec.Get(name) != nil) {
			continue
		}
		assigned[name] = true
		rec.Set(name, v)
	}

	rec.PhoneNumber = normalize.Phone(rec.PhoneNumber)

	rec.PriSpec = n.vocab.Canonicalize(rec.PriSpec)
	rec.SecSpec1 = n.vocab.Canonicalize(rec.SecSpec1)
	rec.SecSpec2 = n.vocab.Canonicalize(rec.SecSpec2)
	rec.SecSpec3 = n.vocab.Canonicalize(rec.SecSpec3)
	rec.SecSpec4 = n.vocab.Canonicalize(rec.SecSpec4)
	all := SecondaryAll(rec.SecSpec1, rec.SecSpec2, rec.SecSpec3, rec.SecSpec4)
	rec.SecSpecAll = &all

	if n.composeAddress {
		addr := normalize.Address(rec.AddressLine1, rec.AddressLine2, rec.City, rec.State, rec.ZipCode,
			normalize.SuppressedFlag(rec.AddressLine2Suppression))
		rec.FullAddress = &addr
	}
	return rec
}

// SecondaryAll joins the non-empty secondary specialties with ", ".
func SecondaryAll(specs ...*string) string {
	parts := make([]string, 0, len(specs))
	for _, s := range specs {
		if s != nil && strings.TrimSpace(*s) != "" {
			parts = append(parts, *s)
		}
	}
	return strings.Join(parts, ", ")
}
