// Package provider holds the canonical provider record, the rename schema
// that maps CMS export headers onto it, the per-record normalizer and the
// NPI-keyed merge of auxiliary sources.
package provider

// Column is one named value of a record. A nil Value is SQL NULL.
type Column struct {
	Name  string
	Value *string
}

// RawRecord is one input row as read from the export: source header names
// in file order.
type RawRecord []Column

// Record is a provider row in the canonical schema. Columns the schema does
// not know, and columns contributed by auxiliary sources, live in Extra.
type Record struct {
	NPI          *string
	PacID        *string
	EnrollmentID *string

	LastName   *string
	FirstName  *string
	MiddleName *string
	Suffix     *string
	Credential *string

	Gender     *string
	MedSchool  *string
	GradYear   *string
	PriSpec    *string
	SecSpec1   *string
	SecSpec2   *string
	SecSpec3   *string
	SecSpec4   *string
	SecSpecAll *string
	Telehealth *string

	OrganizationName     *string
	GroupPacID           *string
	NumberOfGroupMembers *string

	AddressLine1            *string
	AddressLine2            *string
	AddressLine2Suppression *string
	AddressID               *string
	City                    *string
	State                   *string
	ZipCode                 *string
	FullAddress             *string

	PhoneNumber             *string
	MedicareAssignment      *string
	GroupMedicareAssignment *string

	Extra []Column
}

// Canonical column names.
const (
	FieldNPI        = "npi"
	FieldLastName   = "last_name"
	FieldFirstName  = "first_name"
	FieldCredential = "credential"
	FieldPriSpec    = "pri_spec"
	FieldSecSpec1   = "sec_spec_1"
	FieldSecSpec2   = "sec_spec_2"
	FieldSecSpec3   = "sec_spec_3"
	FieldSecSpec4   = "sec_spec_4"
	FieldSecSpecAll = "sec_spec_all"
	FieldCity       = "city"
	FieldState      = "state"
	FieldZipCode    = "zip_code"
	FieldPhone      = "phone_number"
	FieldFullAddr   = "full_address"
)

type field struct {
	name string
	ref  func(*Record) **string
}

var fields = []field{
	{"npi", func(r *Record) **string { return &r.NPI }},
	{"pac_id", func(r *Record) **string { return &r.PacID }},
	{"enrollment_id", func(r *Record) **string { return &r.EnrollmentID }},
	{"last_name", func(r *Record) **string { return &r.LastName }},
	{"first_name", func(r *Record) **string { return &r.FirstName }},
	{"middle_name", func(r *Record) **string { return &r.MiddleName }},
	{"suffix", func(r *Record) **string { return &r.Suffix }},
	{"gender", func(r *Record) **string { return &r.Gender }},
	{"credential", func(r *Record) **string { return &r.Credential }},
	{"med_school", func(r *Record) **string { return &r.MedSchool }},
	{"grad_year", func(r *Record) **string { return &r.GradYear }},
	{"pri_spec", func(r *Record) **string { return &r.PriSpec }},
	{"sec_spec_1", func(r *Record) **string { return &r.SecSpec1 }},
	{"sec_spec_2", func(r *Record) **string { return &r.SecSpec2 }},
	{"sec_spec_3", func(r *Record) **string { return &r.SecSpec3 }},
	{"sec_spec_4", func(r *Record) **string { return &r.SecSpec4 }},
	{"sec_spec_all", func(r *Record) **string { return &r.SecSpecAll }},
	{"telehealth", func(r *Record) **string { return &r.Telehealth }},
	{"organization_name", func(r *Record) **string { return &r.OrganizationName }},
	{"group_pac_id", func(r *Record) **string { return &r.GroupPacID }},
	{"number_of_group_members", func(r *Record) **string { return &r.NumberOfGroupMembers }},
	{"address_line_1", func(r *Record) **string { return &r.AddressLine1 }},
	{"address_line_2", func(r *Record) **string { return &r.AddressLine2 }},
	{"address_line_2_suppression", func(r *Record) **string { return &r.AddressLine2Suppression }},
	{"address_id", func(r *Record) **string { return &r.AddressID }},
	{"city", func(r *Record) **string { return &r.City }},
	{"state", func(r *Record) **string { return &r.State }},
	{"zip_code", func(r *Record) **string { return &r.ZipCode }},
	{"full_address", func(r *Record) **string { return &r.FullAddress }},
	{"phone_number", func(r *Record) **string { return &r.PhoneNumber }},
	{"medicare_assignment", func(r *Record) **string { return &r.MedicareAssignment }},
	{"group_medicare_assignment", func(r *Record) **string { return &r.GroupMedicareAssignment }},
}

var fieldIndex = func() map[string]int {
	m := make(map[string]int, len(fields))
	for i, f := range fields {
		m[f.name] = i
	}
	return m
}()

// Get returns the value of a canonical or extra column.
func (r *Record) Get(name string) *string {
	if i, ok := fieldIndex[name]; ok {
		return *fields[i].ref(r)
	}
	for _, c := range r.Extra {
		if c.Name == name {
			return c.Value
		}
	}
	return nil
}

// Set assigns a canonical or extra column.
func (r *Record) Set(name string, v *string) {
	if i, ok := fieldIndex[name]; ok {
		*fields[i].ref(r) = v
		return
	}
	for i := range r.Extra {
		if r.Extra[i].Name == name {
			r.Extra[i].Value = v
			return
		}
	}
	r.Extra = append(r.Extra, Column{Name: name, Value: v})
}

// Clone returns a copy that shares no mutable state with r.
func (r *Record) Clone() Record {
	c := *r
	if r.Extra != nil {
		c.Extra = make([]Column, len(r.Extra))
		copy(c.Extra, r.Extra)
	}
	return c
}

// Values returns the record's values in the given column order.
func (r *Record) Values(columns []string) []*string {
	out := make([]*string, len(columns))
	for i, name := range columns {
		out[i] = r.Get(name)
	}
	return out
}

// Raw turns the record back into a RawRecord over the given columns.
func (r *Record) Raw(columns []string) RawRecord {
	raw := make(RawRecord, len(columns))
	for i, name := range columns {
		raw[i] = Column{Name: name, Value: r.Get(name)}
	}
	return raw
}

// Table is a batch of records and the columns present in it. A column is
// present even when every value in it is null.
type Table struct {
	Columns []string
	Records []Record
}

// HasColumn reports whether name is one of t's columns.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// TableFrom builds a Table from stored rows, e.g. a catalog read back from disk.
func TableFrom(columns []string, rows [][]*string) *Table {
	t := &Table{Columns: append([]string(nil), columns...), Records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		var rec Record
		for i, name := range columns {
			if i < len(row) {
				rec.Set(name, row[i])
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t
}
