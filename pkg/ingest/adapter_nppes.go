package ingest

import (
	"context"
	"fmt"
)

func init() {
	Register(&nppesAdapter{})
}

// nppesColumns projects the (very wide) NPPES dissemination file onto the
// columns the directory keeps.
var nppesColumns = []struct{ source, target string }{
	{"NPI", "npi"},
	{"Entity Type Code", "nppes_entity_type"},
	{"Provider Enumeration Date", "nppes_enumeration_date"},
	{"Last Update Date", "nppes_last_update"},
	{"NPI Deactivation Date", "nppes_deactivation_date"},
	{"Healthcare Provider Taxonomy Code_1", "nppes_taxonomy_code"},
	{"Provider Business Practice Location Address Telephone Number", "nppes_practice_phone"},
}

type nppesAdapter struct{}

func (a *nppesAdapter) ID() string          { return "nppes" }
func (a *nppesAdapter) Description() string { return "CMS NPPES NPI registry dissemination file" }
func (a *nppesAdapter) DefaultURL() string {
	return "https://download.cms.gov/nppes/NPI_Files.html"
}
func (a *nppesAdapter) License() string { return "Public Domain" }

func (a *nppesAdapter) Load(_ context.Context, path, key string, keys map[string]struct{}) (*Sheet, error) {
	if path == "" {
		return &Sheet{ID: a.ID()}, nil
	}
	raw, err := ReadCSV(path, CSVFormat{})
	if err != nil {
		return nil, fmt.Errorf("nppes: %w", err)
	}

	out := &Sheet{ID: a.ID(), Path: raw.Path}
	var idx []int
	for _, c := range nppesColumns {
		i := raw.Column(c.source)
		if i < 0 {
			continue
		}
		idx = append(idx, i)
		out.Header = append(out.Header, c.target)
	}
	if len(out.Header) == 0 || out.Header[0] != "npi" {
		return nil, &FileError{Op: "read", Path: path, Err: fmt.Errorf("nppes: no NPI column in header")}
	}
	for _, row := range raw.Rows {
		projected := make([]*string, len(idx))
		for j, i := range idx {
			projected[j] = row[i]
		}
		out.Rows = append(out.Rows, projected)
	}
	filterRows(out, key, keys)
	return out, nil
}
