package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/data/repos/catalog"
	"github.com/yungbote/greenscape-backend/internal/data/repos/recommendation"
	"github.com/yungbote/greenscape-backend/internal/data/repos/testutil"
	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/recommend"
)

type memCache struct {
	plants      []*types.Plant
	getErr      error
	gets        int
	sets        int
	invalidated int
}

func (m *memCache) Get(ctx context.Context) ([]*types.Plant, bool, error) {
	m.gets++
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	if m.plants == nil {
		return nil, false, nil
	}
	return m.plants, true, nil
}

func (m *memCache) Set(ctx context.Context, plants []*types.Plant) error {
	m.sets++
	m.plants = plants
	return nil
}

func (m *memCache) Invalidate(ctx context.Context) error {
	m.invalidated++
	m.plants = nil
	return nil
}

var errCacheDown = errors.New("redis: connection refused")

type fixture struct {
	tx       *gorm.DB
	plants   catalog.PlantRepo
	requests recommendation.RequestRepo
	catalog  CatalogService
	recs     RecommendationService
	cache    *memCache
}

// newFixture wires services onto a rolled-back test transaction.
func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	f := &fixture{
		tx:       tx,
		plants:   catalog.NewPlantRepo(tx, log),
		requests: recommendation.NewRequestRepo(tx, log),
	}
	if withCache {
		f.cache = &memCache{}
		f.catalog = NewCatalogService(tx, log, f.plants, f.cache, nil)
	} else {
		f.catalog = NewCatalogService(tx, log, f.plants, nil, nil)
	}
	f.recs = NewRecommendationService(tx, log, recommend.NewEngine(), f.catalog, f.plants, f.requests, nil, RecommendConfig{
		MaxResultsCap:    25,
		StatsConcurrency: 1,
	})
	return f
}
