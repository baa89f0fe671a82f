package directory

import (
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/provider"
)

// Row is a provider formatted for display.
type Row struct {
	NPI        string   `json:"npi"`
	Name       string   `json:"provider_name"`
	Specialty  string   `json:"specialty"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone"`
	Telehealth string   `json:"telehealth"`
	Medicare   string   `json:"accepts_medicare"`
	Distance   *float64 `json:"distance_miles,omitempty"`
}

// RowHeaders are the column titles of a display table, in Row field order
// (NPI excluded).
var RowHeaders = []string{
	"Provider Name", "Specialty", "Address", "Phone", "Telehealth", "Accepts Medicare", "Distance (miles)",
}

// DisplayRow formats a match.
func DisplayRow(m Match) Row {
	r := m.Record
	name := m.Name
	if c := strings.TrimSpace(value(r.Credential)); c != "" {
		name += ", " + c
	}
	return Row{
		NPI:        value(r.NPI),
		Name:       name,
		Specialty:  specialties(r),
		Address:    address(r),
		Phone:      strings.TrimSpace(value(r.PhoneNumber)),
		Telehealth: telehealth(r.Telehealth),
		Medicare:   medicare(r.MedicareAssignment),
		Distance:   m.Distance,
	}
}

// specialties renders "primary; secondary; ...".
func specialties(r *provider.Record) string {
	out := value(r.PriSpec)
	var sec []string
	for _, s := range []*string{r.SecSpec1, r.SecSpec2, r.SecSpec3, r.SecSpec4} {
		if v := strings.TrimSpace(value(s)); v != "" {
			sec = append(sec, value(s))
		}
	}
	if len(sec) > 0 {
		out += "; " + strings.Join(sec, "; ")
	}
	return out
}

// address renders "line1; line2; city, state, zip".
func address(r *provider.Record) string {
	var parts []string
	if v := strings.TrimSpace(value(r.AddressLine1)); v != "" {
		parts = append(parts, v)
	}
	if v := strings.TrimSpace(value(r.AddressLine2)); v != "" {
		parts = append(parts, v)
	}
	var csz []string
	for _, p := range []*string{r.City, r.State, r.ZipCode} {
		if v := strings.TrimSpace(value(p)); v != "" {
			csz = append(csz, v)
		}
	}
	if len(csz) > 0 {
		parts = append(parts, strings.Join(csz, ", "))
	}
	return strings.Join(parts, "; ")
}

func telehealth(v *string) string {
	switch strings.ToUpper(strings.TrimSpace(value(v))) {
	case "Y", "TRUE", "1":
		return "Yes"
	}
	return "No"
}

func medicare(v *string) string {
	s := strings.ToUpper(strings.TrimSpace(value(v)))
	switch s {
	case "Y":
		return "Yes"
	case "M":
		return "Partial (May Accept)"
	}
	return s
}
