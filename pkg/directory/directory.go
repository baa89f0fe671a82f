// Package directory serves the provider catalog as a searchable directory:
// free-text and facet filters, radius search over stored coordinates,
// paginated display rows and a network adequacy estimate.
package directory

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hazyhaar/provider-directory/pkg/provider"
)

// PageSize is the number of rows per result page.
const PageSize = 20

// FieldProviderName is read when a table carries no name parts.
const FieldProviderName = "provider_name"

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Query selects providers. Zero values disable a filter.
type Query struct {
	// Text is matched case-insensitively against name, city and specialties.
	Text        string
	Specialties []string
	States      []string
	// Location labels the search centre, e.g. the city or ZIP the caller
	// resolved to Center.
	Location    string
	Center      *Point
	RadiusMiles float64
	// Page is 1-based.
	Page int
}

func (q Query) located() bool {
	return q.Location != "" || q.Center != nil
}

type entry struct {
	rec      *provider.Record
	name     string
	haystack []string
	coord    Point
	hasCoord bool
}

// Directory is an immutable, searchable snapshot of the catalog.
type Directory struct {
	entries     []entry
	hasCoords   bool
	specialties []string
	states      []string
}

// New indexes t. Records are referenced, not copied; t must not change.
func New(t *provider.Table) *Directory {
	d := &Directory{entries: make([]entry, 0, t.Len())}
	latCol, lonCol := coordColumns(t)
	d.hasCoords = latCol != ""

	specs := make(map[string]bool)
	states := make(map[string]bool)
	for i := range t.Records {
		rec := &t.Records[i]
		e := entry{rec: rec, name: ProviderName(rec)}
		e.haystack = lowerAll(e.name, rec.City, rec.PriSpec, rec.SecSpec1, rec.SecSpec2, rec.SecSpec3, rec.SecSpec4)
		if d.hasCoords {
			e.coord, e.hasCoord = parsePoint(rec.Get(latCol), rec.Get(lonCol))
		}
		d.entries = append(d.entries, e)

		if v := value(rec.PriSpec); v != "" {
			specs[v] = true
		}
		if v := value(rec.State); v != "" {
			states[v] = true
		}
	}
	d.specialties = sortedKeys(specs)
	d.states = sortedKeys(states)
	return d
}

// Len returns the number of providers.
func (d *Directory) Len() int { return len(d.entries) }

// HasCoordinates reports whether radius search is possible.
func (d *Directory) HasCoordinates() bool { return d.hasCoords }

// Facets lists the distinct primary specialties and states, sorted.
type Facets struct {
	Specialties []string `json:"specialties"`
	States      []string `json:"states"`
}

// Facets returns the filter values offered to callers.
func (d *Directory) Facets() Facets {
	return Facets{
		Specialties: append([]string{}, d.specialties...),
		States:      append([]string{}, d.states...),
	}
}

// Match is one provider selected by a query.
type Match struct {
	Record *provider.Record
	Name   string
	// Distance in miles, rounded to 0.1, when a radius filter applied.
	Distance *float64
}

// Filter returns every provider matching q, nearest first when a radius
// filter applied. The warning is set when the radius could not be honoured.
func (d *Directory) Filter(q Query) (matches []Match, warning string) {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	specs := toSet(q.Specialties)
	states := toSet(q.States)
	radius := q.Center != nil && q.RadiusMiles > 0
	if radius && !d.hasCoords {
		radius = false
		warning = "provider coordinates not available for radius filtering"
	}

	for i := range d.entries {
		e := &d.entries[i]
		if text != "" && !e.contains(text) {
			continue
		}
		if specs != nil && !specs[value(e.rec.PriSpec)] {
			continue
		}
		if states != nil && !states[value(e.rec.State)] {
			continue
		}
		m := Match{Record: e.rec, Name: e.name}
		if radius {
			if !e.hasCoord {
				continue
			}
			dist := Haversine(*q.Center, e.coord)
			if dist > q.RadiusMiles {
				continue
			}
			rounded := math.Round(dist*10) / 10
			m.Distance = &rounded
		}
		matches = append(matches, m)
	}

	if radius {
		sort.SliceStable(matches, func(i, j int) bool {
			return *matches[i].Distance < *matches[j].Distance
		})
	}
	return matches, warning
}

// Result is one page of a search.
type Result struct {
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Pages   int    `json:"pages"`
	Rows    []Row  `json:"rows"`
	Warning string `json:"warning,omitempty"`
}

// Search filters and returns the requested page of display rows. Pages
// outside the range are clamped.
func (d *Directory) Search(q Query) Result {
	matches, warning := d.Filter(q)
	res := Result{Total: len(matches), Rows: []Row{}, Warning: warning}
	if res.Total == 0 {
		return res
	}
	res.Pages = (res.Total-1)/PageSize + 1
	res.Page = min(max(q.Page, 1), res.Pages)

	start := (res.Page - 1) * PageSize
	end := min(start+PageSize, res.Total)
	for _, m := range matches[start:end] {
		res.Rows = append(res.Rows, DisplayRow(m))
	}
	return res
}

// ProviderName joins first and last name with single spaces. Tables
// without name parts fall back to a provider_name or name column.
func ProviderName(r *provider.Record) string {
	if r.FirstName == nil && r.LastName == nil {
		if v := r.Get(FieldProviderName); v != nil {
			return *v
		}
		return value(r.Get("name"))
	}
	return strings.Join(strings.Fields(value(r.FirstName)+" "+value(r.LastName)), " ")
}

func (e *entry) contains(text string) bool {
	for _, h := range e.haystack {
		if strings.Contains(h, text) {
			return true
		}
	}
	return false
}

func coordColumns(t *provider.Table) (lat, lon string) {
	for _, pair := range [][2]string{{"latitude", "longitude"}, {"lat", "lon"}} {
		if t.HasColumn(pair[0]) && t.HasColumn(pair[1]) {
			return pair[0], pair[1]
		}
	}
	return "", ""
}

func parsePoint(lat, lon *string) (Point, bool) {
	if lat == nil || lon == nil {
		return Point{}, false
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(*lat), 64)
	if err != nil {
		return Point{}, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(*lon), 64)
	if err != nil {
		return Point{}, false
	}
	return Point{Lat: la, Lon: lo}, true
}

func lowerAll(first string, rest ...*string) []string {
	out := make([]string, 0, len(rest)+1)
	if first != "" {
		out = append(out, strings.ToLower(first))
	}
	for _, v := range rest {
		if v != nil && *v != "" {
			out = append(out, strings.ToLower(*v))
		}
	}
	return out
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
