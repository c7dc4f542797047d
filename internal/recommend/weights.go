package recommend

import (
	"math"
	"strings"
)

// Criterion keys. These name both the weight table entries and the per-criterion score
// breakdown returned with every result.
const (
	KeyHardinessZone      = "hardiness_zone"
	KeySunExposure        = "sun_exposure"
	KeySoilType           = "soil_type"
	KeySoilPH             = "soil_ph"
	KeyMoistureLevel      = "moisture_level"
	KeyHeight             = "height"
	KeyWidth              = "width"
	KeyColor              = "color"
	KeyBloomSeason        = "bloom_season"
	KeyMaintenanceLevel   = "maintenance_level"
	KeyBudget             = "budget"
	KeyNativePreference   = "native_preference"
	KeyWildlifeFriendly   = "wildlife_friendly"
	KeyDeerResistant      = "deer_resistant"
	KeyPollinatorFriendly = "pollinator_friendly"
	KeyContainer          = "container"
	KeyScreening          = "screening"
	KeyHedging            = "hedging"
	KeyGroundcover        = "groundcover"
	KeySlope              = "slope"
)

// Weights maps a criterion key to its relative importance.
type Weights map[string]float64

// DefaultWeights returns the baseline weight table. Site conditions that decide whether a
// plant survives weigh most; aesthetic preferences weigh least.
func DefaultWeights() Weights {
	return Weights{
		KeyHardinessZone:      1.0,
		KeySunExposure:        1.0,
		KeySoilType:           0.6,
		KeySoilPH:             0.5,
		KeyMoistureLevel:      0.8,
		KeyHeight:             0.7,
		KeyWidth:              0.5,
		KeyColor:              0.4,
		KeyBloomSeason:        0.4,
		KeyMaintenanceLevel:   0.6,
		KeyBudget:             0.5,
		KeyNativePreference:   0.5,
		KeyWildlifeFriendly:   0.4,
		KeyDeerResistant:      0.8,
		KeyPollinatorFriendly: 0.6,
		KeyContainer:          0.6,
		KeyScreening:          0.6,
		KeyHedging:            0.6,
		KeyGroundcover:        0.6,
		KeySlope:              0.6,
	}
}

// Keys lists every criterion key in evaluation order.
func Keys() []string {
	out := make([]string, 0, len(criteria))
	for _, c := range criteria {
		out = append(out, c.key)
	}
	return out
}

var weightKeyAliases = map[string]string{
	"deer_resistant_required":      KeyDeerResistant,
	"pollinator_friendly_required": KeyPollinatorFriendly,
	"budget_range":                 KeyBudget,
	"height_range":                 KeyHeight,
	"width_range":                  KeyWidth,
	"colors":                       KeyColor,
	"color_preferences":            KeyColor,
	"sun":                          KeySunExposure,
	"soil":                         KeySoilType,
	"moisture":                     KeyMoistureLevel,
	"water_needs":                  KeyMoistureLevel,
	"maintenance":                  KeyMaintenanceLevel,
	"native":                       KeyNativePreference,
	"wildlife":                     KeyWildlifeFriendly,
	"containers":                   KeyContainer,
	"slopes":                       KeySlope,
}

// CanonicalKey resolves a caller-supplied weight key to a criterion key. ok is false for
// keys that do not name a criterion.
func CanonicalKey(k string) (string, bool) {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, "-", "_")
	k = strings.ReplaceAll(k, " ", "_")
	if alias, ok := weightKeyAliases[k]; ok {
		k = alias
	}
	if _, ok := DefaultWeights()[k]; ok {
		return k, true
	}
	return "", false
}

// Merge returns a copy of w with overrides applied key by key. Unknown keys and values that
// are negative, NaN or infinite are ignored.
func (w Weights) Merge(overrides map[string]float64) Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range overrides {
		key, ok := CanonicalKey(k)
		if !ok || !validWeight(v) {
			continue
		}
		out[key] = v
	}
	return out
}

func (w Weights) get(key string) float64 {
	if v, ok := w[key]; ok && validWeight(v) {
		return v
	}
	return 0
}

func validWeight(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
