package provider

import (
	"log/slog"
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
)

// Merge left-joins each auxiliary sheet onto base by joinKey, in order.
// Base rows are all kept; auxiliary rows without a base match are dropped.
// Auxiliary columns that base already has are discarded before the join, so
// base values always win. base is not modified.
func Merge(base *Table, aux []*ingest.Sheet, joinKey string) *Table {
	out := &Table{
		Columns: append([]string(nil), base.Columns...),
		Records: make([]Record, len(base.Records)),
	}
	for i := range base.Records {
		out.Records[i] = base.Records[i].Clone()
	}
	for _, s := range aux {
		out = MergeOne(out, s, joinKey)
	}
	return out
}

// MergeOne joins a single auxiliary sheet onto t in place and returns t.
// joinKey is matched against both sides ignoring case.
func MergeOne(t *Table, s *ingest.Sheet, joinKey string) *Table {
	if s.Len() == 0 {
		return t
	}
	joinKey, ok := t.column(joinKey)
	if !ok {
		slog.Warn("base table has no join key, auxiliary source skipped", "source", s.ID, "key", joinKey)
		return t
	}

	keyIdx := -1
	type auxCol struct {
		idx  int
		name string
	}
	var cols []auxCol
	taken := make(map[string]bool, len(s.Header))
	for i, h := range s.Header {
		name := strings.ToLower(strings.TrimSpace(h))
		if strings.EqualFold(name, joinKey) {
			if keyIdx < 0 {
				keyIdx = i
			}
			continue
		}
		if taken[name] || t.HasColumn(name) {
			continue
		}
		taken[name] = true
		cols = append(cols, auxCol{idx: i, name: name})
	}
	if keyIdx < 0 {
		slog.Warn("auxiliary source has no join key, skipped", "source", s.ID, "key", joinKey)
		return t
	}

	byKey := make(map[string][]*string, len(s.Rows))
	dups := 0
	for _, row := range s.Rows {
		k := row[keyIdx]
		if k == nil {
			continue
		}
		key := strings.TrimSpace(*k)
		if _, ok := byKey[key]; ok {
			dups++
			continue
		}
		byKey[key] = row
	}
	if dups > 0 {
		slog.Warn("auxiliary source has duplicate keys, first row kept", "source", s.ID, "duplicates", dups)
	}

	for _, c := range cols {
		t.Columns = append(t.Columns, c.name)
	}
	matched := 0
	for i := range t.Records {
		rec := &t.Records[i]
		k := rec.Get(joinKey)
		var row []*string
		if k != nil {
			row = byKey[strings.TrimSpace(*k)]
		}
		if row != nil {
			matched++
		}
		for _, c := range cols {
			var v *string
			if row != nil {
				v = row[c.idx]
			}
			rec.Set(c.name, v)
		}
	}
	slog.Debug("auxiliary source merged", "source", s.ID, "columns", len(cols), "matched", matched)
	return t
}

// column resolves name to the table's own spelling of that column.
func (t *Table) column(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return name, false
}
