package directory

import "sort"

// Benchmark is the providers-per-100k density considered adequate, roughly
// one provider per 2,000 residents.
const Benchmark = 50.0

// statePopulation holds 2019 census estimates.
var statePopulation = map[string]int64{
	"AL": 4903185, "AK": 731545, "AZ": 7278717, "AR": 3017804, "CA": 39512223,
	"CO": 5758736, "CT": 3565287, "DE": 973764, "DC": 705749, "FL": 21477737,
	"GA": 10617423, "HI": 1415872, "ID": 1787065, "IL": 12671821, "IN": 6732219,
	"IA": 3155070, "KS": 2913314, "KY": 4467673, "LA": 4648794, "ME": 1344212,
	"MD": 6045680, "MA": 6892503, "MI": 9986857, "MN": 5639632, "MS": 2976149,
	"MO": 6137428, "MT": 1068778, "NE": 1934408, "NV": 3080156, "NH": 1359711,
	"NJ": 8882190, "NM": 2096829, "NY": 19453561, "NC": 10488084, "ND": 762062,
	"OH": 11689100, "OK": 3956971, "OR": 4217737, "PA": 12801989, "RI": 1059361,
	"SC": 5148714, "SD": 884659, "TN": 6829174, "TX": 28995881, "UT": 3205958,
	"VT": 623989, "VA": 8535519, "WA": 7614893, "WV": 1792147, "WI": 5822434,
	"WY": 578759,
}

// Population returns the population of a state code, 0 when unknown.
func Population(state string) int64 {
	return statePopulation[state]
}

// Adequacy is the provider density of a region.
type Adequacy struct {
	Region     string   `json:"region"`
	States     []string `json:"states,omitempty"`
	Population int64    `json:"population"`
	Providers  int      `json:"providers"`
	// Per100k is meaningful only when Available.
	Per100k   float64 `json:"per_100k"`
	Benchmark float64 `json:"benchmark"`
	Adequate  bool    `json:"adequate"`
	Available bool    `json:"available"`
}

// Adequacy estimates the density of providers matching q. The population
// base is the selected states; else, for a located query, the states present
// in the results; else the whole country.
func (d *Directory) Adequacy(q Query) Adequacy {
	matches, _ := d.Filter(q)

	a := Adequacy{Providers: len(matches), Benchmark: Benchmark}
	switch {
	case len(q.States) > 0:
		a.Region = "selected states"
		a.States = dedupe(q.States)
	case q.located():
		a.Region = "region around " + q.Location
		if q.Location == "" {
			a.Region = "region around the search centre"
		}
		seen := make(map[string]bool)
		for _, m := range matches {
			if s := value(m.Record.State); s != "" {
				seen[s] = true
			}
		}
		a.States = sortedKeys(seen)
	default:
		a.Region = "the entire United States"
		for _, p := range statePopulation {
			a.Population += p
		}
	}
	for _, s := range a.States {
		a.Population += Population(s)
	}

	if a.Population > 0 {
		a.Available = true
		a.Per100k = float64(a.Providers) / float64(a.Population) * 100000
		a.Adequate = a.Per100k >= Benchmark
	}
	return a
}

func dedupe(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
