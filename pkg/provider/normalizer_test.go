package provider

import (
	"reflect"
	"testing"

	"github.com/hazyhaar/provider-directory/pkg/ingest"
	"github.com/hazyhaar/provider-directory/pkg/taxonomy"
)

func testVocab() *taxonomy.Vocabulary {
	return taxonomy.New("Internal Medicine", "Cardiovascular Disease", "Nurse Practitioner", "Family Medicine")
}

func row(kv ...string) RawRecord {
	var r RawRecord
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		if v == "<nil>" {
			r = append(r, Column{Name: kv[i]})
			continue
		}
		r = append(r, Column{Name: kv[i], Value: strPtr(v)})
	}
	return r
}

func TestNormalizeRecord(t *testing.T) {
	n := NewNormalizer(testVocab())
	rec := n.Record(row(
		"NPI", "1234567890",
		"Provider Last Name", "  SMITH ",
		"Provider First Name", "JOHN",
		"Cred", "MD",
		"Pri_spec", "INTERNAL MEDICINE",
		"Sec_spec_1", "cardiovascular disease",
		"Sec_spec_2", "",
		"Sec_spec_3", "Sports Medicine",
		"Sec_spec_all", "stale",
		"cty", "BOSTON",
		"st", "MA",
		"Telephone Number", "1-617-555-0100",
		"Unknown Column", " kept ",
	))

	checks := []struct {
		name string
		got  *string
		want string
	}{
		{"npi", rec.NPI, "1234567890"},
		{"last_name", rec.LastName, "SMITH"},
		{"first_name", rec.FirstName, "JOHN"},
		{"credential", rec.Credential, "MD"},
		{"pri_spec", rec.PriSpec, "Internal Medicine"},
		{"sec_spec_1", rec.SecSpec1, "Cardiovascular Disease"},
		{"sec_spec_2", rec.SecSpec2, ""},
		{"sec_spec_3", rec.SecSpec3, "Sports Medicine"},
		{"sec_spec_4", rec.SecSpec4, "<nil>"},
		{"sec_spec_all", rec.SecSpecAll, "Cardiovascular Disease, Sports Medicine"},
		{"city", rec.City, "BOSTON"},
		{"phone_number", rec.PhoneNumber, "(617) 555-0100"},
		{"full_address", rec.FullAddress, "<nil>"},
		{"Unknown Column", rec.Get("Unknown Column"), "kept"},
	}
	for _, c := range checks {
		if got := deref(c.got); got != c.want {
			t.Errorf("%s = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestNormalizeEmptySecondaries(t *testing.T) {
	n := NewNormalizer(nil)
	rec := n.Record(row("NPI", "1", "Pri_spec", "anything"))
	if rec.SecSpecAll == nil || *rec.SecSpecAll != "" {
		t.Errorf("sec_spec_all = %s, want empty string", deref(rec.SecSpecAll))
	}
	if deref(rec.PriSpec) != "anything" {
		t.Errorf("nil vocabulary should keep pri_spec, got %s", deref(rec.PriSpec))
	}
}

func TestNormalizeMissingColumns(t *testing.T) {
	n := NewNormalizer(testVocab())
	tbl := n.Normalize([]RawRecord{row("NPI", "1"), row("NPI", "2", "cty", "Austin")})

	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}
	want := []string{"npi", "city", "sec_spec_all"}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("Columns = %v, want %v", tbl.Columns, want)
	}
	if tbl.Records[0].City != nil || tbl.Records[0].PhoneNumber != nil {
		t.Error("absent columns should stay nil")
	}
}

func TestNormalizeFullAddress(t *testing.T) {
	n := NewNormalizer(nil, WithFullAddress(true))
	tbl := n.Normalize([]RawRecord{row(
		"NPI", "1",
		"adr_ln_1", "1 Main St",
		"adr_ln_2", "Suite 2",
		"ln_2_sprs", "Y",
		"cty", "Boston",
		"st", "MA",
		"ZIP Code", "02110",
	)})

	if !tbl.HasColumn(FieldFullAddr) {
		t.Errorf("Columns = %v, missing full_address", tbl.Columns)
	}
	if got := deref(tbl.Records[0].FullAddress); got != "1 Main St, Boston, MA, 02110" {
		t.Errorf("full_address = %q", got)
	}
}

func TestNormalizeDuplicateCanonical(t *testing.T) {
	n := NewNormalizer(nil)
	rec := n.Record(row("Cred", "<nil>", "Credential", "DO", "cred", "MD"))
	if got := deref(rec.Credential); got != "DO" {
		t.Errorf("credential = %q, want first non-null DO", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(testVocab(), WithFullAddress(true))
	first := n.Normalize([]RawRecord{
		row("NPI", "1", "Pri_spec", "family medicine", "Sec_spec_1", " nurse practitioner ",
			"Telephone Number", "617.555.0100", "adr_ln_1", " 1 Main ", "cty", "Boston"),
		row("NPI", "2", "Telephone Number", "555-0100"),
	})

	raws := make([]RawRecord, first.Len())
	for i := range first.Records {
		raws[i] = first.Records[i].Raw(first.Columns)
	}
	second := n.Normalize(raws)

	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Fatalf("columns changed: %v vs %v", first.Columns, second.Columns)
	}
	for i := range first.Records {
		a := first.Records[i].Values(first.Columns)
		b := second.Records[i].Values(first.Columns)
		for j := range a {
			if deref(a[j]) != deref(b[j]) {
				t.Errorf("row %d column %s: %q then %q", i, first.Columns[j], deref(a[j]), deref(b[j]))
			}
		}
	}
}

func TestNormalizeSheet(t *testing.T) {
	s := &ingest.Sheet{
		Header: []string{"NPI", "Provider Last Name", "st"},
	}
	tbl := NewNormalizer(nil).NormalizeSheet(s)
	want := []string{"npi", "last_name", "state", "sec_spec_all"}
	if !reflect.DeepEqual(tbl.Columns, want) {
		t.Errorf("empty sheet Columns = %v, want %v", tbl.Columns, want)
	}

	s.Rows = [][]*string{{strPtr("9"), strPtr(" Doe"), nil}}
	tbl = NewNormalizer(nil).NormalizeSheet(s)
	if tbl.Len() != 1 || deref(tbl.Records[0].LastName) != "Doe" || tbl.Records[0].State != nil {
		t.Errorf("record = %+v", tbl.Records[0])
	}
}

func TestSecondaryAll(t *testing.T) {
	if got := SecondaryAll(strPtr("A"), nil, strPtr(" "), strPtr("B")); got != "A, B" {
		t.Errorf("SecondaryAll = %q, want %q", got, "A, B")
	}
	if got := SecondaryAll(); got != "" {
		t.Errorf("SecondaryAll() = %q", got)
	}
}
