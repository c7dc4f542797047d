package recommend

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseCriteria builds Criteria from a decoded request payload. It never fails: values of
// the wrong type or shape are skipped and the matching criterion stays inactive.
func ParseCriteria(raw map[string]any) Criteria {
	var c Criteria
	if len(raw) == 0 {
		return c
	}
	get := func(keys ...string) (any, bool) {
		for _, k := range keys {
			if v, ok := raw[k]; ok && v != nil {
				return v, true
			}
		}
		return nil, false
	}

	if v, ok := get("hardiness_zone", "zone"); ok {
		if z, ok := asInt(v); ok {
			c.HardinessZone = &z
		}
	}
	if v, ok := get("sun_exposure", "sun"); ok {
		c.SunExposure = asString(v)
	}
	if v, ok := get("soil_type", "soil"); ok {
		c.SoilType = asString(v)
	}
	if v, ok := get("soil_ph", "ph"); ok {
		if f, ok := asFloat(v); ok {
			c.SoilPH = &f
		}
	}
	if v, ok := get("moisture_level", "moisture"); ok {
		c.MoistureLevel = asString(v)
	}
	c.Height = parseRange(raw, "height")
	c.Width = parseRange(raw, "width")
	if v, ok := get("colors", "color_preferences", "color"); ok {
		c.Colors = asStrings(v)
	}
	if v, ok := get("bloom_season"); ok {
		c.BloomSeason = asString(v)
	}
	if v, ok := get("maintenance_level", "maintenance"); ok {
		c.MaintenanceLevel = asString(v)
	}
	budget := parseRange(raw, "budget")
	c.BudgetMin, c.BudgetMax = budget.Min, budget.Max

	c.NativePreference = boolField(raw, "native_preference", "native_only")
	c.WildlifeFriendly = boolField(raw, "wildlife_friendly")
	c.DeerResistantRequired = boolField(raw, "deer_resistant_required", "deer_resistant")
	c.PollinatorFriendlyRequired = boolField(raw, "pollinator_friendly_required", "pollinator_friendly")
	c.Container = boolField(raw, "container", "containers", "container_planting")
	c.Screening = boolField(raw, "screening")
	c.Hedging = boolField(raw, "hedging")
	c.Groundcover = boolField(raw, "groundcover")
	c.Slope = boolField(raw, "slope", "slopes")

	if v, ok := get("weights", "custom_weights"); ok {
		if m, ok := v.(map[string]any); ok {
			c.Weights = map[string]float64{}
			for k, wv := range m {
				if f, ok := asFloat(wv); ok {
					c.Weights[k] = f
				}
			}
		}
	}
	return c
}

// parseRange accepts "<name>_min"/"<name>_max", "<name>_range" as an object or a two
// element list, or "<name>" in either shape.
func parseRange(raw map[string]any, name string) Range {
	var r Range
	if v, ok := raw[name+"_min"]; ok {
		if f, ok := asFloat(v); ok {
			r.Min = &f
		}
	}
	if v, ok := raw[name+"_max"]; ok {
		if f, ok := asFloat(v); ok {
			r.Max = &f
		}
	}
	if r.IsSet() {
		return r
	}
	for _, k := range []string{name + "_range", name} {
		switch t := raw[k].(type) {
		case map[string]any:
			if f, ok := asFloat(t["min"]); ok {
				r.Min = &f
			}
			if f, ok := asFloat(t["max"]); ok {
				r.Max = &f
			}
		case []any:
			if len(t) == 2 {
				if f, ok := asFloat(t[0]); ok {
					r.Min = &f
				}
				if f, ok := asFloat(t[1]); ok {
					r.Max = &f
				}
			}
		}
		if r.IsSet() {
			return r
		}
	}
	return r
}

func boolField(raw map[string]any, keys ...string) bool {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if b, ok := asBool(v); ok {
				return b
			}
		}
	}
	return false
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := asStrings(t)
		if len(parts) > 0 {
			return parts[0]
		}
	}
	return ""
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case string:
		var out []string
		for _, p := range strings.Split(t, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, finite(t)
	case float32:
		return float64(t), finite(float64(t))
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil && finite(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && finite(f)
	}
	return 0, false
}

// asInt accepts whole numbers and strings with a leading number ("6", "6b", "zone 6").
func asInt(v any) (int, bool) {
	if s, ok := v.(string); ok {
		digits := ""
		for _, r := range strings.TrimSpace(strings.ToLower(s)) {
			if r >= '0' && r <= '9' {
				digits += string(r)
				continue
			}
			if digits != "" {
				break
			}
		}
		if digits == "" {
			return 0, false
		}
		n, err := strconv.Atoi(digits)
		return n, err == nil
	}
	f, ok := asFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "y", "1", "on":
			return true, true
		case "false", "no", "n", "0", "off", "":
			return false, true
		}
		return false, false
	}
	if f, ok := asFloat(v); ok {
		return f != 0, true
	}
	return false, false
}
