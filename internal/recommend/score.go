package recommend

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/yungbote/greenscape-backend/internal/domain/plant"
)

// outcome is the evaluation of one criterion against one plant.
type outcome struct {
	score    float64
	missing  bool
	excluded bool
	good     string
	poor     string
}

type criterion struct {
	key string
	// label names the plant attribute in "unknown for this plant" warnings.
	label string
	// preference criteria raise a score but never produce a poor-match warning.
	preference bool
	active     func(n *normalized) bool
	eval       func(e *Engine, n *normalized, p *plant.Plant) outcome
}

var criteria = []criterion{
	{key: KeyHardinessZone, label: "hardiness zone", active: func(n *normalized) bool { return n.hasZone }, eval: scoreHardiness},
	{key: KeySunExposure, label: "sun requirements", active: func(n *normalized) bool { return n.hasSun }, eval: scoreSun},
	{key: KeySoilType, label: "soil type", active: func(n *normalized) bool { return n.soil != "" }, eval: scoreSoil},
	{key: KeySoilPH, label: "soil pH range", active: func(n *normalized) bool { return n.hasPH }, eval: scoreSoilPH},
	{key: KeyMoistureLevel, label: "water needs", active: func(n *normalized) bool { return n.hasMoisture }, eval: scoreMoisture},
	{key: KeyHeight, label: "height", active: func(n *normalized) bool { return n.height.IsSet() }, eval: scoreHeight},
	{key: KeyWidth, label: "width", active: func(n *normalized) bool { return n.width.IsSet() }, eval: scoreWidth},
	{key: KeyColor, label: "color", active: func(n *normalized) bool { return len(n.colors) > 0 }, eval: scoreColor},
	{key: KeyBloomSeason, label: "bloom time", active: func(n *normalized) bool { return n.hasSeason }, eval: scoreBloom},
	{key: KeyMaintenanceLevel, label: "maintenance level", active: func(n *normalized) bool { return n.hasMaint }, eval: scoreMaintenance},
	{key: KeyBudget, label: "price", active: func(n *normalized) bool { return n.hasBudget }, eval: scoreBudget},
	{key: KeyNativePreference, label: "native status", preference: true, active: func(n *normalized) bool { return n.native }, eval: scoreNative},
	{key: KeyWildlifeFriendly, label: "wildlife value", preference: true, active: func(n *normalized) bool { return n.wildlife }, eval: scoreWildlife},
	{key: KeyDeerResistant, label: "deer resistance", active: func(n *normalized) bool { return n.deer }, eval: requireFlag("Deer resistant", func(p *plant.Plant) bool { return p.DeerResistant })},
	{key: KeyPollinatorFriendly, label: "pollinator value", active: func(n *normalized) bool { return n.pollinator }, eval: requireFlag("Pollinator friendly", func(p *plant.Plant) bool { return p.PollinatorFriendly })},
	{key: KeyContainer, label: "container suitability", active: func(n *normalized) bool { return n.container }, eval: purposeFlag("containers", func(p *plant.Plant) bool { return p.SuitableContainers })},
	{key: KeyScreening, label: "screening suitability", active: func(n *normalized) bool { return n.screening }, eval: purposeFlag("screening", func(p *plant.Plant) bool { return p.SuitableScreening })},
	{key: KeyHedging, label: "hedging suitability", active: func(n *normalized) bool { return n.hedging }, eval: purposeFlag("hedging", func(p *plant.Plant) bool { return p.SuitableHedging })},
	{key: KeyGroundcover, label: "groundcover suitability", active: func(n *normalized) bool { return n.groundcover }, eval: purposeFlag("groundcover", func(p *plant.Plant) bool { return p.SuitableGroundcover })},
	{key: KeySlope, label: "slope suitability", active: func(n *normalized) bool { return n.slope }, eval: purposeFlag("slopes", func(p *plant.Plant) bool { return p.SuitableSlopes })},
}

var digitsRe = regexp.MustCompile(`\d+`)

// parseZones reads "4-9", "Zones 3 to 8" or "5a-9b" into an inclusive zone range.
func parseZones(text string) (int, int, bool) {
	found := digitsRe.FindAllString(text, -1)
	if len(found) == 0 {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(found[0])
	if err != nil {
		return 0, 0, false
	}
	hi := lo
	if len(found) > 1 {
		if v, err := strconv.Atoi(found[len(found)-1]); err == nil {
			hi = v
		}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

func scoreHardiness(e *Engine, n *normalized, p *plant.Plant) outcome {
	lo, hi, ok := parseZones(p.HardinessZone)
	if !ok {
		return outcome{missing: true}
	}
	span := fmt.Sprintf("zones %d-%d", lo, hi)
	if lo == hi {
		span = fmt.Sprintf("zone %d", lo)
	}
	o := outcome{
		good: fmt.Sprintf("Hardy in zone %d (%s)", n.zone, span),
		poor: fmt.Sprintf("Not reliably hardy in zone %d (%s)", n.zone, span),
	}
	switch {
	case n.zone >= lo && n.zone <= hi:
		o.score = 1
	case n.zone == lo-1 || n.zone == hi+1:
		o.score = e.adjacentScore
	}
	return o
}

func scoreSun(e *Engine, n *normalized, p *plant.Plant) outcome {
	have := sunScale.parseSet(p.SunRequirements)
	if len(have) == 0 {
		return outcome{missing: true}
	}
	want := sunScale.name(n.sun)
	return outcome{
		score: sunScale.bestLevelScore(n.sun, have, e.adjacentScore),
		good:  "Thrives in " + strings.ToLower(want),
		poor:  fmt.Sprintf("Prefers %s, not %s", strings.ToLower(sunScale.describe(have)), strings.ToLower(want)),
	}
}

func scoreSoil(e *Engine, n *normalized, p *plant.Plant) outcome {
	o := outcome{
		good: fmt.Sprintf("Grows well in %s soil", strings.ToLower(n.soil)),
		poor: fmt.Sprintf("Not suited to %s soil", strings.ToLower(n.soil)),
	}
	if n.soil == SoilAdaptable {
		o.score = 1
		o.good = "Soil is not a constraint"
		return o
	}
	have := parseSoils(p.SoilType)
	if len(have) == 0 {
		return outcome{missing: true}
	}
	for _, s := range have {
		switch {
		case s == n.soil || s == SoilAdaptable:
			o.score = 1
			return o
		case e.soilGraph[n.soil][s]:
			o.score = math.Max(o.score, e.adjacentScore)
		}
	}
	return o
}

func scoreSoilPH(e *Engine, n *normalized, p *plant.Plant) outcome {
	lo, hi := p.SoilPHMin, p.SoilPHMax
	if lo == nil && hi == nil {
		return outcome{missing: true}
	}
	if lo == nil {
		lo = hi
	}
	if hi == nil {
		hi = lo
	}
	o := outcome{
		good: fmt.Sprintf("Tolerates soil pH %.1f", n.ph),
		poor: fmt.Sprintf("Soil pH %.1f is outside the preferred range %.1f-%.1f", n.ph, *lo, *hi),
	}
	var d float64
	switch {
	case n.ph < *lo:
		d = *lo - n.ph
	case n.ph > *hi:
		d = n.ph - *hi
	}
	o.score = math.Max(0, 1-d)
	return o
}

func scoreMoisture(e *Engine, n *normalized, p *plant.Plant) outcome {
	have := moistureScale.parseSet(p.WaterNeeds)
	if len(have) == 0 {
		return outcome{missing: true}
	}
	want := strings.ToLower(moistureScale.name(n.moisture))
	return outcome{
		score: moistureScale.bestLevelScore(n.moisture, have, e.adjacentScore),
		good:  fmt.Sprintf("Suited to %s moisture", want),
		poor:  fmt.Sprintf("Needs %s water, site moisture is %s", strings.ToLower(moistureScale.describe(have)), want),
	}
}

func scoreHeight(e *Engine, n *normalized, p *plant.Plant) outcome {
	return scoreSize("height", n.height, p.HeightMin, p.HeightMax)
}

func scoreWidth(e *Engine, n *normalized, p *plant.Plant) outcome {
	return scoreSize("width", n.width, p.WidthMin, p.WidthMax)
}

// scoreSize scores 1 when either range contains the other. Partial overlaps score the
// overlap as a share of the narrower range; disjoint ranges score 0.
func scoreSize(what string, want Range, pMin, pMax *float64) outcome {
	if pMin == nil && pMax == nil {
		return outcome{missing: true}
	}
	if pMin == nil {
		pMin = pMax
	}
	if pMax == nil {
		pMax = pMin
	}
	lo, hi := *pMin, *pMax
	if lo > hi {
		lo, hi = hi, lo
	}
	wLo, wHi := want.bounds()

	o := outcome{
		good: fmt.Sprintf("Mature %s %s fits the desired range", what, formatInches(lo, hi)),
		poor: fmt.Sprintf("Mature %s %s falls outside the desired range", what, formatInches(lo, hi)),
	}
	switch {
	case lo >= wLo && hi <= wHi, wLo >= lo && wHi <= hi:
		o.score = 1
	default:
		overlap := math.Min(hi, wHi) - math.Max(lo, wLo)
		if overlap > 0 {
			o.score = math.Min(1, overlap/math.Min(hi-lo, wHi-wLo))
		}
	}
	return o
}

func formatInches(lo, hi float64) string {
	if lo == hi {
		return strconv.FormatFloat(lo, 'f', -1, 64) + " in"
	}
	return strconv.FormatFloat(lo, 'f', -1, 64) + "-" + strconv.FormatFloat(hi, 'f', -1, 64) + " in"
}

func scoreColor(e *Engine, n *normalized, p *plant.Plant) outcome {
	bloom := colorWords(p.BloomColor)
	foliage := colorWords(p.FoliageColor)
	if len(bloom) == 0 && len(foliage) == 0 {
		return outcome{missing: true}
	}
	o := outcome{poor: "No " + strings.Join(n.colors, " or ") + " blooms or foliage"}
	for _, want := range n.colors {
		if containsWord(bloom, want) {
			o.score = 1
			o.good = fmt.Sprintf("Blooms in %s", want)
			return o
		}
	}
	for _, want := range n.colors {
		if containsWord(foliage, want) {
			o.score = foliageColorScore
			o.good = fmt.Sprintf("Has %s foliage", want)
			return o
		}
	}
	return o
}

const foliageColorScore = 0.7

func containsWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func scoreBloom(e *Engine, n *normalized, p *plant.Plant) outcome {
	have := seasonScale.parseSet(p.BloomTime)
	if len(have) == 0 {
		return outcome{missing: true}
	}
	want := strings.ToLower(seasonScale.name(n.season))
	return outcome{
		score: seasonScale.bestLevelScore(n.season, have, e.adjacentScore),
		good:  "Blooms in " + want,
		poor:  fmt.Sprintf("Blooms in %s, not %s", strings.ToLower(seasonScale.describe(have)), want),
	}
}

// scoreMaintenance is directional: needing less care than the site allows is a full match.
func scoreMaintenance(e *Engine, n *normalized, p *plant.Plant) outcome {
	have := maintenanceScale.parseSet(p.Maintenance)
	if len(have) == 0 {
		return outcome{missing: true}
	}
	level := have[0]
	want := strings.ToLower(maintenanceScale.name(n.maintenance))
	o := outcome{
		good: fmt.Sprintf("%s maintenance", maintenanceScale.name(level)),
		poor: fmt.Sprintf("Needs %s maintenance, more than the %s requested", strings.ToLower(maintenanceScale.name(level)), want),
	}
	switch {
	case level <= n.maintenance:
		o.score = 1
	case level == n.maintenance+1:
		o.score = e.adjacentScore
	}
	return o
}

func scoreBudget(e *Engine, n *normalized, p *plant.Plant) outcome {
	if p.Price == nil {
		return outcome{missing: true}
	}
	price := *p.Price
	o := outcome{
		good: fmt.Sprintf("Within budget at $%.2f", price),
		poor: fmt.Sprintf("Over budget at $%.2f", price),
	}
	switch {
	case price < n.budgetMin:
		// Cheaper than asked for is never a warning: decays to half at $0.
		o.score = 1 - budgetBelowMinPenalty*(n.budgetMin-price)/n.budgetMin
		o.good = fmt.Sprintf("Below the desired price range at $%.2f", price)
	case !n.hasBudgetMax || price <= n.budgetMax:
		o.score = 1
	case n.budgetMax > 0 && price < 2*n.budgetMax:
		o.score = 1 - (price-n.budgetMax)/n.budgetMax
	}
	return o
}

const (
	budgetBelowMinPenalty = 0.5
	preferenceMissScore   = 0.5
	wildlifeMediumScore = 0.75
	unsuitableScore     = 0.2
)

func scoreNative(e *Engine, n *normalized, p *plant.Plant) outcome {
	if p.Native {
		return outcome{score: 1, good: "Native plant"}
	}
	return outcome{score: preferenceMissScore}
}

func scoreWildlife(e *Engine, n *normalized, p *plant.Plant) outcome {
	switch strings.ToLower(strings.TrimSpace(p.WildlifeValue)) {
	case "high":
		return outcome{score: 1, good: "High wildlife value"}
	case "medium", "moderate":
		return outcome{score: wildlifeMediumScore, good: "Supports wildlife"}
	case "low", "none":
		return outcome{score: preferenceMissScore}
	default:
		return outcome{missing: true}
	}
}

func requireFlag(reason string, has func(*plant.Plant) bool) func(*Engine, *normalized, *plant.Plant) outcome {
	return func(e *Engine, n *normalized, p *plant.Plant) outcome {
		if !has(p) {
			return outcome{excluded: true}
		}
		return outcome{score: 1, good: reason}
	}
}

func purposeFlag(use string, has func(*plant.Plant) bool) func(*Engine, *normalized, *plant.Plant) outcome {
	return func(e *Engine, n *normalized, p *plant.Plant) outcome {
		if has(p) {
			return outcome{score: 1, good: "Suitable for " + use}
		}
		return outcome{score: unsuitableScore, poor: "Not recommended for " + use}
	}
}
