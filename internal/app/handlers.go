package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/greenscape-backend/internal/http/handlers"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type Handlers struct {
	Health         *httpH.HealthHandler
	Plant          *httpH.PlantHandler
	Recommendation *httpH.RecommendationHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")

	var pinger httpH.Pinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	} else {
		log.Warn("Readiness check will not ping the database", "error", err)
	}
	return Handlers{
		Health:         httpH.NewHealthHandler(pinger),
		Plant:          httpH.NewPlantHandler(services.Catalog),
		Recommendation: httpH.NewRecommendationHandler(services.Recommendation),
	}
}
