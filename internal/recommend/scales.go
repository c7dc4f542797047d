package recommend

import (
	"sort"
	"strings"
)

// scale is an ordered set of categorical levels. Lookups are case-insensitive and accept
// aliases; distance between levels drives the adjacent-category partial score.
type scale struct {
	levels  []string
	aliases map[string]int
	cyclic  bool
}

var (
	sunScale = newScale([]string{"Full Shade", "Partial Shade", "Partial Sun", "Full Sun"}, false, map[string]int{
		"shade":         0,
		"deep shade":    0,
		"full shade":    0,
		"part shade":    1,
		"partial shade": 1,
		"dappled shade": 1,
		"light shade":   1,
		"part sun":      2,
		"partial sun":   2,
		"sun":           3,
		"full sun":      3,
	})

	moistureScale = newScale([]string{"Low", "Medium", "High"}, false, map[string]int{
		"low":      0,
		"dry":      0,
		"medium":   1,
		"moderate": 1,
		"average":  1,
		"moist":    1,
		"high":     2,
		"wet":      2,
		"boggy":    2,
	})

	maintenanceScale = newScale([]string{"Low", "Medium", "High"}, false, map[string]int{
		"low":       0,
		"minimal":   0,
		"easy":      0,
		"medium":    1,
		"moderate":  1,
		"average":   1,
		"high":      2,
		"demanding": 2,
	})

	seasonScale = newScale([]string{"Spring", "Summer", "Fall", "Winter"}, true, map[string]int{
		"spring": 0, "summer": 1, "fall": 2, "autumn": 2, "winter": 3,
		"midsummer": 1, "midspring": 0, "midwinter": 3,
		"march": 0, "april": 0, "may": 0,
		"june": 1, "july": 1, "august": 1,
		"september": 2, "october": 2, "november": 2,
		"december": 3, "january": 3, "february": 3,
		"mar": 0, "apr": 0,
		"jun": 1, "jul": 1, "aug": 1,
		"sep": 2, "sept": 2, "oct": 2, "nov": 2,
		"dec": 3, "jan": 3, "feb": 3,
	})
)

// noiseWords are dropped when a direct alias lookup fails ("late spring", "medium water").
var noiseWords = map[string]bool{
	"early": true, "late": true, "mid": true,
	"water": true, "moisture": true, "soil": true, "needs": true,
	"maintenance": true, "care": true, "to": true,
}

func newScale(levels []string, cyclic bool, aliases map[string]int) scale {
	s := scale{levels: levels, aliases: make(map[string]int, len(aliases)+len(levels)), cyclic: cyclic}
	for i, l := range levels {
		s.aliases[strings.ToLower(l)] = i
	}
	for k, v := range aliases {
		s.aliases[k] = v
	}
	return s
}

func normalizeText(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(v)
	return strings.Join(strings.Fields(v), " ")
}

// lookup resolves a single value to a level index.
func (s scale) lookup(v string) (int, bool) {
	n := normalizeText(v)
	if n == "" {
		return 0, false
	}
	if i, ok := s.aliases[n]; ok {
		return i, true
	}
	var kept []string
	for _, w := range strings.Fields(n) {
		if !noiseWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return 0, false
	}
	i, ok := s.aliases[strings.Join(kept, " ")]
	return i, ok
}

func (s scale) name(i int) string {
	if i < 0 || i >= len(s.levels) {
		return ""
	}
	return s.levels[i]
}

func (s scale) distance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if s.cyclic && len(s.levels)-d < d {
		d = len(s.levels) - d
	}
	return d
}

// span returns every level from a to b inclusive, wrapping on cyclic scales.
func (s scale) span(a, b int) []int {
	if !s.cyclic {
		if a > b {
			a, b = b, a
		}
		out := make([]int, 0, b-a+1)
		for i := a; i <= b; i++ {
			out = append(out, i)
		}
		return out
	}
	n := len(s.levels)
	out := []int{a}
	for i := a; i != b; {
		i = (i + 1) % n
		out = append(out, i)
	}
	return out
}

// parseSet reads a free-text catalog attribute such as "Full Sun to Partial Shade" or
// "Late spring, early fall" into the sorted set of levels it covers.
func (s scale) parseSet(text string) []int {
	raw := strings.ToLower(strings.TrimSpace(text))
	if raw == "" {
		return nil
	}
	if s.cyclic {
		n := normalizeText(raw)
		if strings.Contains(n, "year round") || strings.Contains(n, "all year") {
			return s.span(0, len(s.levels)-1)
		}
	}
	seen := map[int]bool{}
	add := func(levels ...int) {
		for _, l := range levels {
			seen[l] = true
		}
	}
	segments := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == '|' || r == '&' || r == '(' || r == ')'
	})
	for _, seg := range segments {
		for _, part := range splitWords(seg, " or ", " and ") {
			if i, ok := s.lookup(part); ok {
				add(i)
				continue
			}
			if a, b, ok := s.rangeOf(part); ok {
				add(s.span(a, b)...)
			}
		}
	}
	out := make([]int, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

func (s scale) rangeOf(part string) (int, int, bool) {
	for _, sep := range []string{" to ", " through ", " thru ", "-"} {
		pieces := strings.SplitN(part, sep, 2)
		if len(pieces) != 2 {
			continue
		}
		a, okA := s.lookup(pieces[0])
		b, okB := s.lookup(pieces[1])
		if okA && okB {
			return a, b, true
		}
	}
	return 0, 0, false
}

func splitWords(s string, seps ...string) []string {
	parts := []string{s}
	for _, sep := range seps {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// bestLevelScore is 1 for an exact level hit, adjacent for a neighbouring level and 0
// otherwise, taking the best level the plant covers.
func (s scale) bestLevelScore(want int, have []int, adjacent float64) float64 {
	best := 0.0
	for _, h := range have {
		switch s.distance(want, h) {
		case 0:
			return 1
		case 1:
			if adjacent > best {
				best = adjacent
			}
		}
	}
	return best
}

func (s scale) describe(levels []int) string {
	names := make([]string, 0, len(levels))
	for _, l := range levels {
		names = append(names, s.name(l))
	}
	return strings.Join(names, ", ")
}

// Soil types are not ordered; adjacency is an explicit neighbour table.
const (
	SoilClay      = "Clay"
	SoilLoam      = "Loam"
	SoilSand      = "Sand"
	SoilSilt      = "Silt"
	SoilChalk     = "Chalk"
	SoilAdaptable = "Adaptable"
)

var soilAliases = map[string]string{
	"clay": SoilClay, "clayey": SoilClay, "heavy": SoilClay,
	"loam": SoilLoam, "loamy": SoilLoam,
	"sand": SoilSand, "sandy": SoilSand, "gravelly": SoilSand,
	"silt": SoilSilt, "silty": SoilSilt,
	"chalk": SoilChalk, "chalky": SoilChalk, "limestone": SoilChalk, "alkaline": SoilChalk,
	"adaptable": SoilAdaptable, "any": SoilAdaptable, "all": SoilAdaptable, "tolerant": SoilAdaptable,
}

// DefaultSoilAdjacency lists which soil types count as neighbours for partial credit.
func DefaultSoilAdjacency() map[string][]string {
	return map[string][]string{
		SoilLoam:  {SoilClay, SoilSand, SoilSilt},
		SoilSilt:  {SoilClay},
		SoilChalk: {SoilSand},
	}
}

func lookupSoil(v string) (string, bool) {
	n := normalizeText(v)
	if s, ok := soilAliases[n]; ok {
		return s, true
	}
	for _, w := range strings.Fields(n) {
		if s, ok := soilAliases[w]; ok {
			return s, true
		}
	}
	return "", false
}

// parseSoils scans free text word by word ("well-drained sandy loam" is sand and loam).
func parseSoils(text string) []string {
	n := normalizeText(strings.NewReplacer(",", " ", "/", " ", ";", " ").Replace(text))
	seen := map[string]bool{}
	var out []string
	for _, w := range strings.Fields(n) {
		if s, ok := soilAliases[w]; ok && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func buildSoilGraph(pairs map[string][]string) map[string]map[string]bool {
	g := map[string]map[string]bool{}
	link := func(a, b string) {
		if g[a] == nil {
			g[a] = map[string]bool{}
		}
		g[a][b] = true
	}
	for a, list := range pairs {
		ca, ok := lookupSoil(a)
		if !ok {
			continue
		}
		for _, b := range list {
			cb, ok := lookupSoil(b)
			if !ok || cb == ca {
				continue
			}
			link(ca, cb)
			link(cb, ca)
		}
	}
	return g
}

// CategoricalOptions lists the canonical values accepted for each categorical criterion.
func CategoricalOptions() map[string][]string {
	cp := func(s scale) []string { return append([]string(nil), s.levels...) }
	return map[string][]string{
		KeySunExposure:      cp(sunScale),
		KeyMoistureLevel:    cp(moistureScale),
		KeyMaintenanceLevel: cp(maintenanceScale),
		KeyBloomSeason:      cp(seasonScale),
		KeySoilType:         {SoilClay, SoilLoam, SoilSand, SoilSilt, SoilChalk, SoilAdaptable},
	}
}
