package db

import (
	"fmt"

	types "github.com/yungbote/greenscape-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalog
		&types.Plant{},

		// Recommendation log
		&types.PlantRecommendationRequest{},
	)
}

// EnsureRecommendationIndexes adds the composite indexes history queries rely on. The
// statements are valid on both Postgres and SQLite.
func EnsureRecommendationIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_plant_rec_request_user_created
		ON plant_recommendation_request(user_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_plant_rec_request_user_created: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_plant_rec_request_session_created
		ON plant_recommendation_request(session_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_plant_rec_request_session_created: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_plant_rec_request_feedback
		ON plant_recommendation_request(feedback_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_plant_rec_request_feedback: %w", err)
	}
	return nil
}

func EnsureCatalogIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_plants_category_name
		ON plants(category, name);
	`).Error; err != nil {
		return fmt.Errorf("create idx_plants_category_name: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureCatalogIndexes(s.db); err != nil {
		s.log.Error("Catalog index migration failed", "error", err)
		return err
	}
	if err := EnsureRecommendationIndexes(s.db); err != nil {
		s.log.Error("Recommendation index migration failed", "error", err)
		return err
	}
	s.log.Info("Auto migration complete", "driver", s.driver)
	return nil
}
