package recommend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/greenscape-backend/internal/domain/plant"
	"github.com/yungbote/greenscape-backend/internal/pkg/pointers"
)

func mkPlant(id uint, name string, mutate ...func(*plant.Plant)) *plant.Plant {
	p := &plant.Plant{ID: id, Name: name, CommonName: name}
	for _, m := range mutate {
		m(p)
	}
	return p
}

func names(results []Scored) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Plant.Name)
	}
	return out
}

func TestEmptyCriteriaScoresEveryPlantEqually(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(1, "Salvia nemorosa"),
		mkPlant(2, "Achillea millefolium"),
		mkPlant(3, "Monarda didyma"),
	}
	got := NewEngine().GetRecommendations(catalog, Criteria{}, 10, 0.3)

	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, 1.0, r.TotalScore)
		assert.Empty(t, r.Scores)
	}
	assert.Equal(t, []string{"Achillea millefolium", "Monarda didyma", "Salvia nemorosa"}, names(got))
}

func TestExactCategoricalMatchScoresOne(t *testing.T) {
	p := mkPlant(1, "Echinacea purpurea", func(p *plant.Plant) {
		p.SunRequirements = "Full Sun"
		p.SoilType = "Clay"
		p.WaterNeeds = "Medium"
		p.Maintenance = "Low"
		p.BloomTime = "Summer"
	})
	c := Criteria{
		SunExposure:      "Full Sun",
		SoilType:         "Clay",
		MoistureLevel:    "Medium",
		MaintenanceLevel: "Low",
		BloomSeason:      "Summer",
	}
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, c, 10, 0)

	require.Len(t, got, 1)
	for _, key := range []string{KeySunExposure, KeySoilType, KeyMoistureLevel, KeyMaintenanceLevel, KeyBloomSeason} {
		assert.Equal(t, 1.0, got[0].Scores[key], key)
	}
	assert.Equal(t, 1.0, got[0].TotalScore)
	assert.Empty(t, got[0].Warnings)
	assert.Len(t, got[0].MatchReasons, 5)
}

func TestNativePreferenceIsAdditive(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(1, "Buddleja davidii", func(p *plant.Plant) { p.SunRequirements = "Full Sun" }),
		mkPlant(2, "Asclepias tuberosa", func(p *plant.Plant) {
			p.SunRequirements = "Full Sun"
			p.Native = true
		}),
	}
	c := Criteria{SunExposure: "Full Sun", NativePreference: true}
	got := NewEngine().GetRecommendations(catalog, c, 10, 0.3)

	require.Len(t, got, 2)
	assert.Equal(t, "Asclepias tuberosa", got[0].Plant.Name)
	assert.Equal(t, 1.0, got[0].TotalScore)
	assert.Equal(t, 0.833, got[1].TotalScore)
	assert.GreaterOrEqual(t, got[0].TotalScore, got[1].TotalScore)
	assert.Contains(t, got[0].MatchReasons, "Native plant")
	assert.Empty(t, got[1].Warnings)
}

func TestRequiredCriterionExcludes(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(1, "Hosta", func(p *plant.Plant) {}),
		mkPlant(2, "Nepeta", func(p *plant.Plant) { p.DeerResistant = true }),
		mkPlant(3, "Tulipa", func(p *plant.Plant) {}),
	}
	got := NewEngine().GetRecommendations(catalog, Criteria{DeerResistantRequired: true}, 10, 0)

	require.Len(t, got, 1)
	assert.Equal(t, "Nepeta", got[0].Plant.Name)
	assert.Equal(t, 1.0, got[0].Scores[KeyDeerResistant])
}

func TestPollinatorRequiredExcludesRegardlessOfOtherScores(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(1, "Perfect but sterile", func(p *plant.Plant) { p.SunRequirements = "Full Sun" }),
		mkPlant(2, "Shade lover", func(p *plant.Plant) {
			p.SunRequirements = "Full Shade"
			p.PollinatorFriendly = true
		}),
	}
	got := NewEngine().GetRecommendations(catalog, Criteria{SunExposure: "Full Sun", PollinatorFriendlyRequired: true}, 10, 0)

	require.Len(t, got, 1)
	assert.Equal(t, "Shade lover", got[0].Plant.Name)
}

func TestMaxResultsKeepsHighestScoring(t *testing.T) {
	var catalog []*plant.Plant
	for i := 1; i <= 10; i++ {
		hi := float64(12 + 12*i)
		catalog = append(catalog, mkPlant(uint(i), fmt.Sprintf("Plant %02d", 11-i), func(p *plant.Plant) {
			p.HeightMin = pointers.Float64(12)
			p.HeightMax = pointers.Float64(hi)
		}))
	}
	c := Criteria{Height: Range{Min: pointers.Float64(0), Max: pointers.Float64(24)}}
	got := NewEngine().GetRecommendations(catalog, c, 2, 0)

	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].Plant.ID)
	assert.Equal(t, uint(2), got[1].Plant.ID)
	assert.Equal(t, 1.0, got[0].TotalScore)
	assert.Equal(t, 0.5, got[1].TotalScore)
}

func TestResultsRespectMinScoreAndOrdering(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(1, "Zinnia", func(p *plant.Plant) { p.SunRequirements = "Full Sun" }),
		mkPlant(2, "Astilbe", func(p *plant.Plant) { p.SunRequirements = "Full Shade" }),
		mkPlant(3, "Heuchera", func(p *plant.Plant) { p.SunRequirements = "Partial Sun" }),
		mkPlant(4, "Coreopsis", func(p *plant.Plant) { p.SunRequirements = "Full Sun" }),
		mkPlant(5, "Coreopsis", func(p *plant.Plant) { p.SunRequirements = "Sun" }),
	}
	got := NewEngine().GetRecommendations(catalog, Criteria{SunExposure: "Full Sun"}, 10, 0.3)

	require.Len(t, got, 4)
	for i, r := range got {
		assert.GreaterOrEqual(t, r.TotalScore, 0.3)
		assert.LessOrEqual(t, r.TotalScore, 1.0)
		if i > 0 {
			prev := got[i-1]
			assert.GreaterOrEqual(t, prev.TotalScore, r.TotalScore)
			if prev.TotalScore == r.TotalScore {
				assert.LessOrEqual(t, prev.Plant.Name, r.Plant.Name)
			}
		}
	}
	assert.Equal(t, []uint{4, 5, 1, 3}, []uint{got[0].Plant.ID, got[1].Plant.ID, got[2].Plant.ID, got[3].Plant.ID})
}

func TestAdjacentAndDistantCategories(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(1, "Near", func(p *plant.Plant) { p.SunRequirements = "Partial Sun" }),
		mkPlant(2, "Far", func(p *plant.Plant) { p.SunRequirements = "Full Shade" }),
	}
	got := NewEngine().GetRecommendations(catalog, Criteria{SunExposure: "Full Sun"}, 10, 0)

	require.Len(t, got, 2)
	assert.Equal(t, 0.5, got[0].Scores[KeySunExposure])
	assert.Equal(t, 0.0, got[1].Scores[KeySunExposure])
	assert.Equal(t, []string{"Prefers full shade, not full sun"}, got[1].Warnings)
}

func TestAdjacentScoreIsConfigurable(t *testing.T) {
	p := mkPlant(1, "Near", func(p *plant.Plant) { p.SunRequirements = "Partial Sun" })
	got := NewEngine(WithAdjacentScore(0.25)).GetRecommendations([]*plant.Plant{p}, Criteria{SunExposure: "Full Sun"}, 10, 0)

	require.Len(t, got, 1)
	assert.Equal(t, 0.25, got[0].TotalScore)
}

func TestMissingAttributeIsWeakMatchWithWarning(t *testing.T) {
	p := mkPlant(1, "Mystery")
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, Criteria{SunExposure: "Full Sun"}, 10, 0)

	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].TotalScore)
	assert.Equal(t, []string{"sun requirements unknown for this plant"}, got[0].Warnings)
	assert.Empty(t, got[0].MatchReasons)
}

func TestCustomWeightsOverrideByKey(t *testing.T) {
	p := mkPlant(1, "Buddleja davidii", func(p *plant.Plant) { p.SunRequirements = "Full Sun" })
	c := Criteria{
		SunExposure:      "Full Sun",
		NativePreference: true,
		Weights:          map[string]float64{"sun_exposure": 2},
	}
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, c, 10, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 0.9, got[0].TotalScore)

	c.Weights = map[string]float64{"sun_exposure": -1, "native_preference": 0}
	got = NewEngine().GetRecommendations([]*plant.Plant{p}, c, 10, 0)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].TotalScore, "negative override ignored, zero weight drops native")
}

func TestAllWeightsZeroScoresOne(t *testing.T) {
	p := mkPlant(1, "Far", func(p *plant.Plant) { p.SunRequirements = "Full Shade" })
	c := Criteria{SunExposure: "Full Sun", Weights: map[string]float64{"sun_exposure": 0}}
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, c, 10, 0.3)

	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].TotalScore)
	assert.Equal(t, 0.0, got[0].Scores[KeySunExposure])
}

func TestTieBreakByNameThenID(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(9, "Beta"),
		mkPlant(7, "Alpha"),
		mkPlant(3, "Alpha"),
	}
	got := NewEngine().GetRecommendations(catalog, Criteria{}, 10, 0)

	require.Len(t, got, 3)
	assert.Equal(t, []uint{3, 7, 9}, []uint{got[0].Plant.ID, got[1].Plant.ID, got[2].Plant.ID})
}

func TestGetRecommendationsIsIdempotent(t *testing.T) {
	catalog := []*plant.Plant{
		mkPlant(1, "Rudbeckia hirta", func(p *plant.Plant) {
			p.SunRequirements = "Full Sun to Partial Shade"
			p.HardinessZone = "3-9"
			p.BloomColor = "Yellow"
		}),
		mkPlant(2, "Hydrangea arborescens", func(p *plant.Plant) {
			p.SunRequirements = "Partial Shade"
			p.HardinessZone = "4-9"
			p.BloomColor = "White"
		}),
	}
	c := Criteria{SunExposure: "Partial Sun", HardinessZone: pointers.Int(5), Colors: []string{"yellow"}}
	e := NewEngine()

	first := e.GetRecommendations(catalog, c, 10, 0)
	second := e.GetRecommendations(catalog, c, 10, 0)
	assert.Equal(t, first, second)
}

func TestDefaultsForOutOfRangeArguments(t *testing.T) {
	var catalog []*plant.Plant
	for i := 1; i <= 15; i++ {
		catalog = append(catalog, mkPlant(uint(i), fmt.Sprintf("Plant %02d", i)))
	}
	e := NewEngine()
	assert.Len(t, e.GetRecommendations(catalog, Criteria{}, 0, 0.3), DefaultMaxResults)
	assert.Len(t, e.GetRecommendations(catalog, Criteria{}, 20, -4), 15)
	assert.Empty(t, e.GetRecommendations(nil, Criteria{}, 5, 0))
	assert.Len(t, e.GetRecommendations([]*plant.Plant{nil, catalog[0]}, Criteria{}, 5, 2), 1)
}

func TestCriterionScorers(t *testing.T) {
	e := NewEngine()
	score := func(t *testing.T, p *plant.Plant, c Criteria, key string) float64 {
		t.Helper()
		got := e.GetRecommendations([]*plant.Plant{p}, c, 1, 0)
		require.Len(t, got, 1)
		return got[0].Scores[key]
	}

	tests := []struct {
		name   string
		mutate func(*plant.Plant)
		c      Criteria
		key    string
		want   float64
	}{
		{"zone inside", func(p *plant.Plant) { p.HardinessZone = "4-9" }, Criteria{HardinessZone: pointers.Int(6)}, KeyHardinessZone, 1},
		{"zone one out", func(p *plant.Plant) { p.HardinessZone = "Zones 7 to 10" }, Criteria{HardinessZone: pointers.Int(6)}, KeyHardinessZone, 0.5},
		{"zone far", func(p *plant.Plant) { p.HardinessZone = "8a-11b" }, Criteria{HardinessZone: pointers.Int(6)}, KeyHardinessZone, 0},
		{"soil adjacent", func(p *plant.Plant) { p.SoilType = "Loam" }, Criteria{SoilType: "clay"}, KeySoilType, 0.5},
		{"soil adaptable plant", func(p *plant.Plant) { p.SoilType = "Adaptable" }, Criteria{SoilType: "chalk"}, KeySoilType, 1},
		{"soil mixed text", func(p *plant.Plant) { p.SoilType = "Well-drained sandy loam" }, Criteria{SoilType: "Sandy"}, KeySoilType, 1},
		{"soil unrelated", func(p *plant.Plant) { p.SoilType = "Chalk" }, Criteria{SoilType: "Clay"}, KeySoilType, 0},
		{"ph inside", func(p *plant.Plant) { p.SoilPHMin, p.SoilPHMax = pointers.Float64(6), pointers.Float64(7) }, Criteria{SoilPH: pointers.Float64(6.5)}, KeySoilPH, 1},
		{"ph half unit out", func(p *plant.Plant) { p.SoilPHMin, p.SoilPHMax = pointers.Float64(6), pointers.Float64(7) }, Criteria{SoilPH: pointers.Float64(7.5)}, KeySoilPH, 0.5},
		{"ph far", func(p *plant.Plant) { p.SoilPHMin, p.SoilPHMax = pointers.Float64(5), pointers.Float64(5.5) }, Criteria{SoilPH: pointers.Float64(7.5)}, KeySoilPH, 0},
		{"moisture range", func(p *plant.Plant) { p.WaterNeeds = "Dry to medium" }, Criteria{MoistureLevel: "low"}, KeyMoistureLevel, 1},
		{"moisture adjacent", func(p *plant.Plant) { p.WaterNeeds = "High" }, Criteria{MoistureLevel: "moist"}, KeyMoistureLevel, 0.5},
		{"width partial overlap", func(p *plant.Plant) { p.WidthMin, p.WidthMax = pointers.Float64(12), pointers.Float64(36) }, Criteria{Width: Range{Max: pointers.Float64(24)}}, KeyWidth, 0.5},
		{"width disjoint", func(p *plant.Plant) { p.WidthMin, p.WidthMax = pointers.Float64(48), pointers.Float64(60) }, Criteria{Width: Range{Max: pointers.Float64(24)}}, KeyWidth, 0},
		{"height point inside", func(p *plant.Plant) { p.HeightMax = pointers.Float64(18) }, Criteria{Height: Range{Min: pointers.Float64(12), Max: pointers.Float64(24)}}, KeyHeight, 1},
		{"height plant contains desired", func(p *plant.Plant) { p.HeightMin, p.HeightMax = pointers.Float64(24), pointers.Float64(48) }, Criteria{Height: Range{Min: pointers.Float64(30), Max: pointers.Float64(40)}}, KeyHeight, 1},
		{"height desired point in plant", func(p *plant.Plant) { p.HeightMin, p.HeightMax = pointers.Float64(24), pointers.Float64(48) }, Criteria{Height: Range{Min: pointers.Float64(36), Max: pointers.Float64(36)}}, KeyHeight, 1},
		{"height desired slightly wider than a point", func(p *plant.Plant) { p.HeightMin, p.HeightMax = pointers.Float64(24), pointers.Float64(48) }, Criteria{Height: Range{Min: pointers.Float64(35), Max: pointers.Float64(37)}}, KeyHeight, 1},
		{"height partial overlap uses narrower span", func(p *plant.Plant) { p.HeightMin, p.HeightMax = pointers.Float64(24), pointers.Float64(48) }, Criteria{Height: Range{Min: pointers.Float64(40), Max: pointers.Float64(60)}}, KeyHeight, 0.4},
		{"bloom color", func(p *plant.Plant) { p.BloomColor = "Purple-blue" }, Criteria{Colors: []string{"Purple"}}, KeyColor, 1},
		{"foliage color", func(p *plant.Plant) {
			p.BloomColor = "White"
			p.FoliageColor = "Purple"
		}, Criteria{Colors: []string{"purple"}}, KeyColor, 0.7},
		{"bloom cyclic neighbour", func(p *plant.Plant) { p.BloomTime = "Early spring" }, Criteria{BloomSeason: "winter"}, KeyBloomSeason, 0.5},
		{"bloom opposite", func(p *plant.Plant) { p.BloomTime = "Summer" }, Criteria{BloomSeason: "winter"}, KeyBloomSeason, 0},
		{"bloom months wrap", func(p *plant.Plant) { p.BloomTime = "November to February" }, Criteria{BloomSeason: "Winter"}, KeyBloomSeason, 1},
		{"maintenance below", func(p *plant.Plant) { p.Maintenance = "Low" }, Criteria{MaintenanceLevel: "medium"}, KeyMaintenanceLevel, 1},
		{"maintenance one above", func(p *plant.Plant) { p.Maintenance = "High" }, Criteria{MaintenanceLevel: "medium"}, KeyMaintenanceLevel, 0.5},
		{"maintenance two above", func(p *plant.Plant) { p.Maintenance = "High" }, Criteria{MaintenanceLevel: "low"}, KeyMaintenanceLevel, 0},
		{"budget within", func(p *plant.Plant) { p.Price = pointers.Float64(15) }, Criteria{BudgetMax: pointers.Float64(20)}, KeyBudget, 1},
		{"budget over", func(p *plant.Plant) { p.Price = pointers.Float64(30) }, Criteria{BudgetMax: pointers.Float64(20)}, KeyBudget, 0.5},
		{"budget double", func(p *plant.Plant) { p.Price = pointers.Float64(45) }, Criteria{BudgetMax: pointers.Float64(20)}, KeyBudget, 0},
		{"budget below min", func(p *plant.Plant) { p.Price = pointers.Float64(2) }, Criteria{BudgetMin: pointers.Float64(50), BudgetMax: pointers.Float64(100)}, KeyBudget, 0.52},
		{"budget inside min and max", func(p *plant.Plant) { p.Price = pointers.Float64(75) }, Criteria{BudgetMin: pointers.Float64(50), BudgetMax: pointers.Float64(100)}, KeyBudget, 1},
		{"budget min only above", func(p *plant.Plant) { p.Price = pointers.Float64(500) }, Criteria{BudgetMin: pointers.Float64(50)}, KeyBudget, 1},
		{"budget min only below", func(p *plant.Plant) { p.Price = pointers.Float64(25) }, Criteria{BudgetMin: pointers.Float64(50)}, KeyBudget, 0.75},
		{"wildlife medium", func(p *plant.Plant) { p.WildlifeValue = "Medium" }, Criteria{WildlifeFriendly: true}, KeyWildlifeFriendly, 0.75},
		{"container suitable", func(p *plant.Plant) { p.SuitableContainers = true }, Criteria{Container: true}, KeyContainer, 1},
		{"slope unsuitable", func(p *plant.Plant) {}, Criteria{Slope: true}, KeySlope, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mkPlant(1, "Subject", tt.mutate)
			assert.InDelta(t, tt.want, score(t, p, tt.c, tt.key), 1e-9)
		})
	}
}

func TestWarningsAndReasons(t *testing.T) {
	p := mkPlant(1, "Camellia japonica", func(p *plant.Plant) {
		p.HardinessZone = "8-11"
		p.SunRequirements = "Partial Shade"
	})
	c := Criteria{HardinessZone: pointers.Int(6), SunExposure: "Partial Shade", Hedging: true, NativePreference: true}
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, c, 10, 0)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"Thrives in partial shade"}, got[0].MatchReasons)
	assert.Equal(t, []string{
		"Not reliably hardy in zone 6 (zones 8-11)",
		"Not recommended for hedging",
	}, got[0].Warnings)
}

func TestUnparseableCriteriaAreInactive(t *testing.T) {
	c := Criteria{
		HardinessZone: pointers.Int(40),
		SunExposure:   "lots of light",
		SoilType:      "moon dust",
		SoilPH:        pointers.Float64(19),
		BloomSeason:   "whenever",
	}
	assert.True(t, c.IsEmpty())

	p := mkPlant(1, "Anything")
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, c, 10, 0.3)
	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].TotalScore)
}

func TestPlantRangeContainingDesiredHasNoWarning(t *testing.T) {
	p := mkPlant(1, "Tall Grass", func(p *plant.Plant) {
		p.HeightMin, p.HeightMax = pointers.Float64(24), pointers.Float64(48)
	})
	c := Criteria{Height: Range{Min: pointers.Float64(35), Max: pointers.Float64(37)}}
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, c, 1, 0)

	require.Len(t, got, 1)
	assert.Equal(t, 1.0, got[0].TotalScore)
	assert.Empty(t, got[0].Warnings)
	assert.Contains(t, got[0].MatchReasons, "Mature height 24-48 in fits the desired range")
}

func TestBudgetMinAloneIsActive(t *testing.T) {
	c := Criteria{BudgetMin: pointers.Float64(50)}
	assert.Equal(t, []string{KeyBudget}, c.ActiveKeys())
	assert.Equal(t, "from $50.00", Summary(c)[KeyBudget])

	cheap := mkPlant(1, "Bargain", func(p *plant.Plant) { p.Price = pointers.Float64(2) })
	pricey := mkPlant(2, "Specimen", func(p *plant.Plant) { p.Price = pointers.Float64(80) })
	got := NewEngine().GetRecommendations([]*plant.Plant{cheap, pricey}, c, 10, 0)

	require.Len(t, got, 2)
	assert.Equal(t, "Specimen", got[0].Plant.Name)
	assert.Less(t, got[1].TotalScore, got[0].TotalScore)
	assert.Empty(t, got[1].Warnings)
}

func TestBudgetRangeSummaryMatchesScoring(t *testing.T) {
	c := Criteria{BudgetMin: pointers.Float64(50), BudgetMax: pointers.Float64(100)}
	assert.Equal(t, "$50.00-$100.00", Summary(c)[KeyBudget])

	p := mkPlant(1, "Bargain", func(p *plant.Plant) { p.Price = pointers.Float64(2) })
	got := NewEngine().GetRecommendations([]*plant.Plant{p}, c, 1, 0)
	require.Len(t, got, 1)
	assert.Less(t, got[0].Scores[KeyBudget], 1.0)
}
