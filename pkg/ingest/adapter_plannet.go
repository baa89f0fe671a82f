package ingest

import (
	"context"
	"fmt"
)

func init() {
	Register(&planNetAdapter{})
}

// planNetAdapter reads a flattened Da Vinci Plan-Net practitioner directory
// export. Every column is kept; the merge drops the ones the base already has.
type planNetAdapter struct{}

func (a *planNetAdapter) ID() string { return "plan-net" }
func (a *planNetAdapter) Description() string {
	return "Plan-Net payer provider directory (flattened practitioner roles)"
}
func (a *planNetAdapter) DefaultURL() string {
	return "https://build.fhir.org/ig/HL7/davinci-pdex-plan-net/"
}
func (a *planNetAdapter) License() string { return "CC0" }

func (a *planNetAdapter) Load(_ context.Context, path, key string, keys map[string]struct{}) (*Sheet, error) {
	if path == "" {
		return &Sheet{ID: a.ID()}, nil
	}
	s, err := ReadCSV(path, CSVFormat{})
	if err != nil {
		return nil, fmt.Errorf("plan-net: %w", err)
	}
	s.ID = a.ID()
	filterRows(s, key, keys)
	return s, nil
}
