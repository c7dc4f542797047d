package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/observability"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
	"github.com/yungbote/greenscape-backend/internal/recommend"
	"github.com/yungbote/greenscape-backend/internal/services"
)

type Services struct {
	Catalog        services.CatalogService
	Recommendation services.RecommendationService
}

func newEngine(cfg RecommendConfig) *recommend.Engine {
	return recommend.NewEngine(
		recommend.WithWeights(recommend.DefaultWeights().Merge(cfg.Weights)),
		recommend.WithAdjacentScore(cfg.AdjacentScore),
		recommend.WithUnknownScore(cfg.UnknownScore),
	)
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	catalogService := services.NewCatalogService(db, log, repos.Plant, clients.CatalogCache, metrics)
	recommendationService := services.NewRecommendationService(
		db,
		log,
		newEngine(cfg.Recommend),
		catalogService,
		repos.Plant,
		repos.Request,
		metrics,
		services.RecommendConfig{
			DefaultMaxResults: cfg.Recommend.DefaultMaxResults,
			MaxResultsCap:     cfg.Recommend.MaxResultsCap,
			DefaultMinScore:   cfg.Recommend.DefaultMinScore,
			HistoryLimitCap:   cfg.Recommend.HistoryLimitCap,
		},
	)

	return Services{
		Catalog:        catalogService,
		Recommendation: recommendationService,
	}
}
