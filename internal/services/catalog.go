package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/data/repos/catalog"
	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/observability"
	"github.com/yungbote/greenscape-backend/internal/pkg/dbctx"
	"github.com/yungbote/greenscape-backend/internal/platform/apierr"
	"github.com/yungbote/greenscape-backend/internal/platform/cache"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
	"github.com/yungbote/greenscape-backend/internal/recommend"
)

const (
	defaultPlantPageSize = 50
	maxPlantPageSize     = 200
)

type ListQuery struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

type PlantPage struct {
	Plants []*types.Plant `json:"plants"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type ImportRejection struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ImportSummary struct {
	Received int               `json:"received"`
	Upserted int               `json:"upserted"`
	Rejected []ImportRejection `json:"rejected"`
}

type CriteriaOptions struct {
	Options        map[string][]string `json:"options"`
	Categories     []string            `json:"categories"`
	DefaultWeights map[string]float64  `json:"default_weights"`
}

type CatalogService interface {
	// Snapshot returns the full catalog the engine scores against.
	Snapshot(ctx context.Context) ([]*types.Plant, error)
	Import(dbc dbctx.Context, plants []*types.Plant) (*ImportSummary, error)
	LoadYAML(r io.Reader) ([]*types.Plant, error)
	List(ctx context.Context, q ListQuery) (*PlantPage, error)
	CriteriaOptions(ctx context.Context) (*CriteriaOptions, error)
}

type catalogService struct {
	db      *gorm.DB
	log     *logger.Logger
	plants  catalog.PlantRepo
	cache   cache.CatalogCache
	metrics *observability.Metrics
}

// NewCatalogService accepts a nil cache (caching disabled) and nil metrics.
func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, plants catalog.PlantRepo, snapshotCache cache.CatalogCache, metrics *observability.Metrics) CatalogService {
	return &catalogService{
		db:      db,
		log:     baseLog.With("service", "CatalogService"),
		plants:  plants,
		cache:   snapshotCache,
		metrics: metrics,
	}
}

func (s *catalogService) Snapshot(ctx context.Context) ([]*types.Plant, error) {
	if s.cache == nil {
		s.metrics.IncCatalogCache("disabled")
	} else {
		cached, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.metrics.IncCatalogCache("error")
			s.log.Warn("Catalog cache read failed, falling back to database", "error", err)
		case ok:
			s.metrics.IncCatalogCache("hit")
			return cached, nil
		default:
			s.metrics.IncCatalogCache("miss")
		}
	}

	plants, err := s.plants.ListAll(ctx, nil)
	if err != nil {
		s.log.Error("Catalog load failed", "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "catalog_unavailable", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, plants); err != nil {
			s.log.Warn("Catalog cache write failed", "error", err, "plants", len(plants))
		}
	}
	return plants, nil
}

// Import validates and upserts plants by name in one transaction. Invalid records are
// reported and skipped; they never abort the import.
func (s *catalogService) Import(dbc dbctx.Context, plants []*types.Plant) (*ImportSummary, error) {
	if len(plants) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "empty_catalog", errors.New("no plants to import"))
	}
	ctx := dbc.Context()
	summary := &ImportSummary{Received: len(plants), Rejected: []ImportRejection{}}
	valid := make([]*types.Plant, 0, len(plants))
	seen := map[string]int{}
	for i, p := range plants {
		if err := p.Validate(); err != nil {
			summary.Rejected = append(summary.Rejected, ImportRejection{Index: i, Name: nameOf(p), Reason: err.Error()})
			continue
		}
		p.Name = strings.TrimSpace(p.Name)
		if first, dup := seen[p.Name]; dup {
			summary.Rejected = append(summary.Rejected, ImportRejection{
				Index:  i,
				Name:   p.Name,
				Reason: fmt.Sprintf("duplicate of record %d", first),
			})
			continue
		}
		seen[p.Name] = i
		// Imports are keyed by name; ids always come from the database.
		p.ID = 0
		valid = append(valid, p)
	}

	if len(valid) > 0 {
		err := dbc.InTx(s.db, func(tx *gorm.DB) error {
			return s.plants.UpsertByName(ctx, tx, valid)
		})
		if err != nil {
			s.log.Error("Catalog import failed", "error", err, "plants", len(valid))
			return nil, apierr.New(http.StatusInternalServerError, "catalog_import_failed", err)
		}
	}
	summary.Upserted = len(valid)
	s.metrics.AddCatalogImport(summary.Upserted, len(summary.Rejected))

	if s.cache != nil && summary.Upserted > 0 {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("Catalog cache invalidation failed", "error", err)
		}
	}
	s.log.Info("Catalog import finished",
		"received", summary.Received,
		"upserted", summary.Upserted,
		"rejected", len(summary.Rejected),
	)
	return summary, nil
}

func nameOf(p *types.Plant) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.Name)
}

func (s *catalogService) LoadYAML(r io.Reader) ([]*types.Plant, error) {
	return decodeCatalogYAML(r)
}

func (s *catalogService) List(ctx context.Context, q ListQuery) (*PlantPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPlantPageSize
	}
	if limit > maxPlantPageSize {
		limit = maxPlantPageSize
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	plants, total, err := s.plants.List(ctx, nil, catalog.ListFilter{
		Category: strings.TrimSpace(q.Category),
		Query:    strings.TrimSpace(q.Query),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "catalog_unavailable", err)
	}
	return &PlantPage{Plants: plants, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *catalogService) CriteriaOptions(ctx context.Context) (*CriteriaOptions, error) {
	categories, err := s.plants.Categories(ctx, nil)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "catalog_unavailable", err)
	}
	sort.Strings(categories)
	return &CriteriaOptions{
		Options:        recommend.CategoricalOptions(),
		Categories:     categories,
		DefaultWeights: recommend.DefaultWeights(),
	}, nil
}
