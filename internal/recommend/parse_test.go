package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriteriaReadsLooseInput(t *testing.T) {
	c := ParseCriteria(map[string]any{
		"hardiness_zone":          "6b",
		"sun_exposure":            "full sun",
		"height_range":            []any{12.0, 36.0},
		"width_max":               "24",
		"colors":                  "purple, white",
		"budget_range":            map[string]any{"min": 5.0, "max": 40.0},
		"deer_resistant_required": "yes",
		"native_preference":       true,
		"container":               1.0,
		"weights":                 map[string]any{"sun_exposure": 2.0, "color": "oops"},
	})

	require.NotNil(t, c.HardinessZone)
	assert.Equal(t, 6, *c.HardinessZone)
	assert.Equal(t, "full sun", c.SunExposure)
	require.NotNil(t, c.Height.Min)
	require.NotNil(t, c.Height.Max)
	assert.Equal(t, 12.0, *c.Height.Min)
	assert.Equal(t, 36.0, *c.Height.Max)
	require.NotNil(t, c.Width.Max)
	assert.Nil(t, c.Width.Min)
	assert.Equal(t, 24.0, *c.Width.Max)
	assert.Equal(t, []string{"purple", "white"}, c.Colors)
	require.NotNil(t, c.BudgetMax)
	assert.Equal(t, 40.0, *c.BudgetMax)
	assert.True(t, c.DeerResistantRequired)
	assert.True(t, c.NativePreference)
	assert.True(t, c.Container)
	assert.Equal(t, map[string]float64{"sun_exposure": 2}, c.Weights)

	assert.Equal(t, []string{
		KeyHardinessZone, KeySunExposure, KeyHeight, KeyWidth, KeyColor, KeyBudget,
		KeyNativePreference, KeyDeerResistant, KeyContainer,
	}, c.ActiveKeys())
}

func TestParseCriteriaIgnoresMalformedValues(t *testing.T) {
	c := ParseCriteria(map[string]any{
		"hardiness_zone":      "warm",
		"sun_exposure":        42.0,
		"soil_ph":             "acidic",
		"height_min":          map[string]any{"x": 1},
		"deer_resistant":      "perhaps",
		"wildlife_friendly":   []any{true},
		"weights":             "heavy",
		"unknown_criterion_x": "ignored",
	})
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Weights)

	assert.True(t, ParseCriteria(nil).IsEmpty())
}

func TestSummaryDescribesActiveCriteria(t *testing.T) {
	c := ParseCriteria(map[string]any{
		"hardiness_zone":               6.0,
		"sun_exposure":                 "part-shade",
		"moisture_level":               "wet",
		"height_max":                   30.0,
		"budget_max":                   25.0,
		"pollinator_friendly_required": true,
		"bloom_season":                 "autumn",
	})
	assert.Equal(t, map[string]string{
		KeyHardinessZone:      "Zone 6",
		KeySunExposure:        "Partial Shade",
		KeyMoistureLevel:      "High",
		KeyHeight:             "up to 30 in",
		KeyBudget:             "up to $25.00",
		KeyPollinatorFriendly: "Pollinator friendly only",
		KeyBloomSeason:        "Fall",
	}, Summary(c))
	assert.Empty(t, Summary(Criteria{}))
}

func TestScaleParseSet(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, sunScale.parseSet("Full Sun to Partial Shade"))
	assert.Equal(t, []int{1, 3}, sunScale.parseSet("Full sun, part shade"))
	assert.Equal(t, []int{2, 3}, sunScale.parseSet("Full Sun-Part Sun"))
	assert.Equal(t, []int{0, 1, 2}, seasonScale.parseSet("Late spring to early fall"))
	assert.Equal(t, []int{2, 3}, seasonScale.parseSet("Nov-Feb"))
	assert.Equal(t, []int{0, 1, 2, 3}, seasonScale.parseSet("Year-round"))
	assert.Empty(t, moistureScale.parseSet("varies"))
	assert.Empty(t, sunScale.parseSet(""))
}

func TestCanonicalWeightKeys(t *testing.T) {
	k, ok := CanonicalKey("Deer-Resistant Required")
	assert.True(t, ok)
	assert.Equal(t, KeyDeerResistant, k)

	_, ok = CanonicalKey("price_per_unit")
	assert.False(t, ok)

	merged := DefaultWeights().Merge(map[string]float64{"budget_range": 2, "height": -3})
	assert.Equal(t, 2.0, merged[KeyBudget])
	assert.Equal(t, DefaultWeights()[KeyHeight], merged[KeyHeight])
	assert.Len(t, Keys(), len(DefaultWeights()))
}
