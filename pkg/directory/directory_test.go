package directory

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/hazyhaar/provider-directory/pkg/provider"
)

func strPtr(s string) *string { return &s }

func rec(first, last, city, state, spec string) provider.Record {
	r := provider.Record{
		NPI:       strPtr(fmt.Sprintf("%s-%s", first, last)),
		FirstName: strPtr(first),
		LastName:  strPtr(last),
		City:      strPtr(city),
		State:     strPtr(state),
		PriSpec:   strPtr(spec),
	}
	return r
}

func sampleTable() *provider.Table {
	cols := []string{"npi", "first_name", "last_name", "city", "state", "pri_spec", "sec_spec_1"}
	recs := []provider.Record{
		rec("Ann", "Lee", "Boston", "MA", "Internal Medicine"),
		rec("Bob", "Stone", "Cambridge", "MA", "Family Medicine"),
		rec("Cara", "Diaz", "New York", "NY", "Cardiovascular Disease"),
		rec("Dan ", " Wu", "Austin", "TX", "Internal Medicine"),
	}
	recs[1].SecSpec1 = strPtr("Sports Medicine")
	return &provider.Table{Columns: cols, Records: recs}
}

func withCoords(t *provider.Table) *provider.Table {
	coords := [][2]string{
		{"42.3601", "-71.0589"},
		{"42.3736", "-71.1097"},
		{"40.7128", "-74.0060"},
		{"", ""},
	}
	t.Columns = append(t.Columns, "latitude", "longitude")
	for i := range t.Records {
		if coords[i][0] != "" {
			t.Records[i].Set("latitude", strPtr(coords[i][0]))
			t.Records[i].Set("longitude", strPtr(coords[i][1]))
		}
	}
	return t
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func TestProviderName(t *testing.T) {
	tests := []struct {
		rec  provider.Record
		want string
	}{
		{provider.Record{FirstName: strPtr(" Ann "), LastName: strPtr("Lee")}, "Ann Lee"},
		{provider.Record{FirstName: strPtr("Mary  Jo"), LastName: strPtr("Smith")}, "Mary Jo Smith"},
		{provider.Record{LastName: strPtr("Solo")}, "Solo"},
		{provider.Record{Extra: []provider.Column{{Name: "provider_name", Value: strPtr("Clinic A")}}}, "Clinic A"},
		{provider.Record{}, ""},
	}
	for _, tt := range tests {
		if got := ProviderName(&tt.rec); got != tt.want {
			t.Errorf("ProviderName = %q, want %q", got, tt.want)
		}
	}
}

func TestSearchText(t *testing.T) {
	d := New(sampleTable())
	tests := []struct {
		text string
		want []string
	}{
		{"", []string{"Ann Lee", "Bob Stone", "Cara Diaz", "Dan Wu"}},
		{"  LEE ", []string{"Ann Lee"}},
		{"cambridge", []string{"Bob Stone"}},
		{"internal", []string{"Ann Lee", "Dan Wu"}},
		{"sports", []string{"Bob Stone"}},
		{"nobody", []string{}},
	}
	for _, tt := range tests {
		res := d.Search(Query{Text: tt.text})
		if got := names(res.Rows); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Search(%q) = %v, want %v", tt.text, got, tt.want)
		}
		if res.Total != len(tt.want) {
			t.Errorf("Search(%q).Total = %d", tt.text, res.Total)
		}
	}
}

func TestSearchFacetFilters(t *testing.T) {
	d := New(sampleTable())

	res := d.Search(Query{Specialties: []string{"Internal Medicine"}, States: []string{"TX", "CA"}})
	if got := names(res.Rows); !reflect.DeepEqual(got, []string{"Dan Wu"}) {
		t.Errorf("specialty+state = %v", got)
	}

	// Set match is exact.
	res = d.Search(Query{Specialties: []string{"internal medicine"}})
	if res.Total != 0 {
		t.Errorf("lowercase specialty matched %d rows, want 0", res.Total)
	}
}

func TestFacets(t *testing.T) {
	f := New(sampleTable()).Facets()
	wantSpecs := []string{"Cardiovascular Disease", "Family Medicine", "Internal Medicine"}
	if !reflect.DeepEqual(f.Specialties, wantSpecs) {
		t.Errorf("Specialties = %v", f.Specialties)
	}
	if !reflect.DeepEqual(f.States, []string{"MA", "NY", "TX"}) {
		t.Errorf("States = %v", f.States)
	}
}

func TestSearchPagination(t *testing.T) {
	tbl := &provider.Table{Columns: []string{"npi", "last_name"}}
	for i := range 45 {
		tbl.Records = append(tbl.Records, provider.Record{LastName: strPtr(fmt.Sprintf("P%02d", i))})
	}
	d := New(tbl)

	tests := []struct {
		page, wantPage, wantRows int
		first                    string
	}{
		{0, 1, 20, "P00"},
		{1, 1, 20, "P00"},
		{2, 2, 20, "P20"},
		{3, 3, 5, "P40"},
		{9, 3, 5, "P40"},
	}
	for _, tt := range tests {
		res := d.Search(Query{Page: tt.page})
		if res.Pages != 3 || res.Total != 45 {
			t.Fatalf("Pages=%d Total=%d", res.Pages, res.Total)
		}
		if res.Page != tt.wantPage || len(res.Rows) != tt.wantRows || res.Rows[0].Name != tt.first {
			t.Errorf("page %d: got page %d, %d rows, first %q", tt.page, res.Page, len(res.Rows), res.Rows[0].Name)
		}
	}

	empty := New(&provider.Table{}).Search(Query{Page: 2})
	if empty.Total != 0 || empty.Pages != 0 || len(empty.Rows) != 0 {
		t.Errorf("empty search = %+v", empty)
	}
}

func TestSearchRadius(t *testing.T) {
	d := New(withCoords(sampleTable()))
	if !d.HasCoordinates() {
		t.Fatal("expected coordinates")
	}

	// Centre in Cambridge: Cambridge first, Boston second, New York and
	// the provider without coordinates excluded.
	res := d.Search(Query{Center: &Point{Lat: 42.3736, Lon: -71.1097}, RadiusMiles: 10})
	if got := names(res.Rows); !reflect.DeepEqual(got, []string{"Bob Stone", "Ann Lee"}) {
		t.Fatalf("radius search = %v", got)
	}
	if d0 := *res.Rows[0].Distance; d0 != 0 {
		t.Errorf("distance to self = %v", d0)
	}
	if d1 := *res.Rows[1].Distance; d1 < 2.5 || d1 > 3.0 {
		t.Errorf("Boston-Cambridge = %v miles", d1)
	}

	// Radius zero disables the filter.
	res = d.Search(Query{Center: &Point{Lat: 42.3736, Lon: -71.1097}})
	if res.Total != 4 || res.Rows[0].Distance != nil {
		t.Errorf("radius 0: total %d", res.Total)
	}
}

func TestSearchRadiusWithoutCoordinates(t *testing.T) {
	d := New(sampleTable())
	res := d.Search(Query{Center: &Point{Lat: 42, Lon: -71}, RadiusMiles: 5})
	if res.Warning == "" {
		t.Error("expected a warning when coordinates are missing")
	}
	if res.Total != 4 {
		t.Errorf("Total = %d, want unfiltered 4", res.Total)
	}
}

func TestHaversine(t *testing.T) {
	boston := Point{Lat: 42.3601, Lon: -71.0589}
	nyc := Point{Lat: 40.7128, Lon: -74.0060}
	got := Haversine(boston, nyc)
	if got < 185 || got > 195 {
		t.Errorf("Boston-NYC = %.1f miles, want ~190", got)
	}
	if Haversine(nyc, nyc) != 0 {
		t.Error("distance to self should be 0")
	}
}
