package recommend

import (
	"math"
	"sort"
	"strings"
)

// Range is a desired size span in inches. Either bound may be open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) IsSet() bool { return r.Min != nil || r.Max != nil }

func (r Range) bounds() (float64, float64) {
	lo, hi := 0.0, math.Inf(1)
	if r.Min != nil {
		lo = *r.Min
	}
	if r.Max != nil {
		hi = *r.Max
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Criteria holds the constraints and preferences of one recommendation query. Every field
// is optional: a zero value means the criterion does not apply.
type Criteria struct {
	HardinessZone    *int     `json:"hardiness_zone,omitempty"`
	SunExposure      string   `json:"sun_exposure,omitempty"`
	SoilType         string   `json:"soil_type,omitempty"`
	SoilPH           *float64 `json:"soil_ph,omitempty"`
	MoistureLevel    string   `json:"moisture_level,omitempty"`
	Height           Range    `json:"height,omitempty"`
	Width            Range    `json:"width,omitempty"`
	Colors           []string `json:"colors,omitempty"`
	BloomSeason      string   `json:"bloom_season,omitempty"`
	MaintenanceLevel string   `json:"maintenance_level,omitempty"`
	BudgetMin        *float64 `json:"budget_min,omitempty"`
	BudgetMax        *float64 `json:"budget_max,omitempty"`

	NativePreference bool `json:"native_preference,omitempty"`
	WildlifeFriendly bool `json:"wildlife_friendly,omitempty"`

	DeerResistantRequired      bool `json:"deer_resistant_required,omitempty"`
	PollinatorFriendlyRequired bool `json:"pollinator_friendly_required,omitempty"`

	Container   bool `json:"container,omitempty"`
	Screening   bool `json:"screening,omitempty"`
	Hedging     bool `json:"hedging,omitempty"`
	Groundcover bool `json:"groundcover,omitempty"`
	Slope       bool `json:"slope,omitempty"`

	Weights map[string]float64 `json:"weights,omitempty"`
}

// normalized is the resolved form the engine scores against. Values that cannot be
// interpreted are dropped, which makes the criterion inactive.
type normalized struct {
	zone         int
	hasZone      bool
	sun          int
	hasSun       bool
	soil         string
	ph           float64
	hasPH        bool
	moisture     int
	hasMoisture  bool
	height       Range
	width        Range
	colors       []string
	season       int
	hasSeason    bool
	maintenance  int
	hasMaint     bool
	budgetMin    float64
	budgetMax    float64
	hasBudgetMax bool
	hasBudget    bool

	native      bool
	wildlife    bool
	deer        bool
	pollinator  bool
	container   bool
	screening   bool
	hedging     bool
	groundcover bool
	slope       bool
}

func (c Criteria) normalize() normalized {
	var n normalized
	if c.HardinessZone != nil && *c.HardinessZone >= 1 && *c.HardinessZone <= 13 {
		n.zone, n.hasZone = *c.HardinessZone, true
	}
	n.sun, n.hasSun = sunScale.lookup(c.SunExposure)
	n.soil, _ = lookupSoil(c.SoilType)
	if c.SoilPH != nil && finite(*c.SoilPH) && *c.SoilPH >= 0 && *c.SoilPH <= 14 {
		n.ph, n.hasPH = *c.SoilPH, true
	}
	n.moisture, n.hasMoisture = moistureScale.lookup(c.MoistureLevel)
	n.height = cleanRange(c.Height)
	n.width = cleanRange(c.Width)
	n.colors = cleanColors(c.Colors)
	n.season, n.hasSeason = seasonScale.lookup(c.BloomSeason)
	n.maintenance, n.hasMaint = maintenanceScale.lookup(c.MaintenanceLevel)
	if c.BudgetMax != nil && finite(*c.BudgetMax) && *c.BudgetMax >= 0 {
		n.budgetMax, n.hasBudgetMax = *c.BudgetMax, true
	}
	if c.BudgetMin != nil && finite(*c.BudgetMin) && *c.BudgetMin > 0 {
		n.budgetMin = *c.BudgetMin
	}
	if n.hasBudgetMax && n.budgetMin > n.budgetMax {
		n.budgetMin, n.budgetMax = n.budgetMax, n.budgetMin
	}
	n.hasBudget = n.hasBudgetMax || n.budgetMin > 0

	n.native = c.NativePreference
	n.wildlife = c.WildlifeFriendly
	n.deer = c.DeerResistantRequired
	n.pollinator = c.PollinatorFriendlyRequired
	n.container = c.Container
	n.screening = c.Screening
	n.hedging = c.Hedging
	n.groundcover = c.Groundcover
	n.slope = c.Slope
	return n
}

func cleanRange(r Range) Range {
	var out Range
	if r.Min != nil && finite(*r.Min) && *r.Min >= 0 {
		v := *r.Min
		out.Min = &v
	}
	if r.Max != nil && finite(*r.Max) && *r.Max >= 0 {
		v := *r.Max
		out.Max = &v
	}
	return out
}

func cleanColors(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range in {
		for _, w := range colorWords(c) {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	sort.Strings(out)
	return out
}

// colorWords splits "Blue-Purple / white" into its lower-case words.
func colorWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}

// ActiveKeys returns the keys of the criteria that will be scored, in evaluation order.
func (c Criteria) ActiveKeys() []string {
	n := c.normalize()
	var out []string
	for _, cr := range criteria {
		if cr.active(&n) {
			out = append(out, cr.key)
		}
	}
	return out
}

// IsEmpty reports whether no criterion applies.
func (c Criteria) IsEmpty() bool { return len(c.ActiveKeys()) == 0 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
