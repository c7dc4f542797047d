package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/data/repos/catalog"
	"github.com/yungbote/greenscape-backend/internal/data/repos/recommendation"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type Repos struct {
	Plant   catalog.PlantRepo
	Request recommendation.RequestRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Plant:   catalog.NewPlantRepo(db, log),
		Request: recommendation.NewRequestRepo(db, log),
	}
}
