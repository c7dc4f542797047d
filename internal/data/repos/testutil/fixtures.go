package testutil

import (
	"context"
	"testing"
	"time"

	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/pkg/pointers"
	"gorm.io/gorm"
)

// SeedPlant inserts a full-sun perennial; mutate adjusts fields before insert.
func SeedPlant(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, mutate ...func(*types.Plant)) *types.Plant {
	tb.Helper()
	p := &types.Plant{
		Name:            name,
		CommonName:      name,
		Category:        "Perennial",
		SunRequirements: "Full Sun",
		WaterNeeds:      "Medium",
		SoilType:        "Loam",
		HardinessZone:   "4-9",
		HeightMin:       pointers.Float64(12),
		HeightMax:       pointers.Float64(24),
		WidthMin:        pointers.Float64(12),
		WidthMax:        pointers.Float64(18),
		BloomTime:       "Summer",
		BloomColor:      "Purple",
		Maintenance:     "Low",
		Price:           pointers.Float64(12.5),
	}
	for _, m := range mutate {
		m(p)
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plant: %v", err)
	}
	return p
}

// SeedRequest inserts a logged recommendation request for the given identity.
func SeedRequest(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, sessionID string, plants ...types.RecommendedPlant) *types.PlantRecommendationRequest {
	tb.Helper()
	r := &types.PlantRecommendationRequest{
		SunExposure:       "Full Sun",
		Criteria:          []byte(`{"sun_exposure":"Full Sun"}`),
		MaxResults:        10,
		MinScore:          0.3,
		PlantsEvaluated:   len(plants),
		RecommendedPlants: plants,
		UserID:            userID,
		SessionID:         sessionID,
		IPAddress:         "127.0.0.1",
		CreatedAt:         time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed recommendation request: %v", err)
	}
	return r
}
