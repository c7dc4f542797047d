package recommend

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary renders the active criteria as display strings keyed by criterion key.
func Summary(c Criteria) map[string]string {
	n := c.normalize()
	out := map[string]string{}
	if n.hasZone {
		out[KeyHardinessZone] = fmt.Sprintf("Zone %d", n.zone)
	}
	if n.hasSun {
		out[KeySunExposure] = sunScale.name(n.sun)
	}
	if n.soil != "" {
		out[KeySoilType] = n.soil
	}
	if n.hasPH {
		out[KeySoilPH] = fmt.Sprintf("pH %.1f", n.ph)
	}
	if n.hasMoisture {
		out[KeyMoistureLevel] = moistureScale.name(n.moisture)
	}
	if n.height.IsSet() {
		out[KeyHeight] = describeRange(n.height)
	}
	if n.width.IsSet() {
		out[KeyWidth] = describeRange(n.width)
	}
	if len(n.colors) > 0 {
		out[KeyColor] = strings.Join(n.colors, ", ")
	}
	if n.hasSeason {
		out[KeyBloomSeason] = seasonScale.name(n.season)
	}
	if n.hasMaint {
		out[KeyMaintenanceLevel] = maintenanceScale.name(n.maintenance)
	}
	if n.hasBudget {
		switch {
		case !n.hasBudgetMax:
			out[KeyBudget] = fmt.Sprintf("from $%.2f", n.budgetMin)
		case n.budgetMin > 0:
			out[KeyBudget] = fmt.Sprintf("$%.2f-$%.2f", n.budgetMin, n.budgetMax)
		default:
			out[KeyBudget] = fmt.Sprintf("up to $%.2f", n.budgetMax)
		}
	}
	flags := []struct {
		on    bool
		key   string
		label string
	}{
		{n.native, KeyNativePreference, "Prefer natives"},
		{n.wildlife, KeyWildlifeFriendly, "Wildlife friendly"},
		{n.deer, KeyDeerResistant, "Deer resistant only"},
		{n.pollinator, KeyPollinatorFriendly, "Pollinator friendly only"},
		{n.container, KeyContainer, "For containers"},
		{n.screening, KeyScreening, "For screening"},
		{n.hedging, KeyHedging, "For hedging"},
		{n.groundcover, KeyGroundcover, "As groundcover"},
		{n.slope, KeySlope, "For slopes"},
	}
	for _, f := range flags {
		if f.on {
			out[f.key] = f.label
		}
	}
	return out
}

func describeRange(r Range) string {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case r.Min != nil && r.Max != nil:
		return num(*r.Min) + "-" + num(*r.Max) + " in"
	case r.Min != nil:
		return "at least " + num(*r.Min) + " in"
	default:
		return "up to " + num(*r.Max) + " in"
	}
}
