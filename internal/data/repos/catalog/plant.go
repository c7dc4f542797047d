package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/greenscape-backend/internal/data/repos/dberrors"
	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type ListFilter struct {
	Category string
	// Query matches name or common name, case-insensitively.
	Query  string
	Limit  int
	Offset int
}

type PlantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, plants []*types.Plant) ([]*types.Plant, error)
	UpsertByName(ctx context.Context, tx *gorm.DB, plants []*types.Plant) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*types.Plant, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Plant, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Plant, int64, error)
	Categories(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type plantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantRepo(db *gorm.DB, baseLog *logger.Logger) PlantRepo {
	repoLog := baseLog.With("repo", "PlantRepo")
	return &plantRepo{db: db, log: repoLog}
}

func (r *plantRepo) Create(ctx context.Context, tx *gorm.DB, plants []*types.Plant) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(plants) == 0 {
		return []*types.Plant{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&plants).Error; err != nil {
		return nil, dberrors.Map("create plants", err)
	}
	return plants, nil
}

// upsertColumns are overwritten when a plant with the same name already exists.
// deleted_at is included so re-importing a removed plant restores it.
var upsertColumns = []string{
	"common_name", "category",
	"sun_requirements", "water_needs", "soil_type", "hardiness_zone",
	"height_min", "height_max", "width_min", "width_max",
	"bloom_time", "bloom_color", "foliage_color", "maintenance",
	"native", "deer_resistant", "pollinator_friendly", "wildlife_value",
	"price", "soil_ph_min", "soil_ph_max", "drainage", "growth_rate",
	"evergreen", "drought_tolerant", "salt_tolerant",
	"suitable_containers", "suitable_hedging", "suitable_screening",
	"suitable_groundcover", "suitable_slopes",
	"notes", "updated_at", "deleted_at",
}

func (r *plantRepo) UpsertByName(ctx context.Context, tx *gorm.DB, plants []*types.Plant) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(plants) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&plants).Error; err != nil {
		return dberrors.Map("upsert plants", err)
	}
	return nil
}

func (r *plantRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Plant
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, dberrors.Map("get plants by ids", err)
	}
	return results, nil
}

func (r *plantRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Plant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Plant
	if err := transaction.WithContext(ctx).
		Order("name ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, dberrors.Map("list all plants", err)
	}
	return results, nil
}

func (r *plantRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Plant, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.Plant{})
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where("LOWER(category) = ?", strings.ToLower(c))
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(common_name) LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberrors.Map("count plants", err)
	}

	var results []*types.Plant
	page := q.Order("name ASC, id ASC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if err := page.Find(&results).Error; err != nil {
		return nil, 0, dberrors.Map("list plants", err)
	}
	return results, total, nil
}

func (r *plantRepo) Categories(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var out []string
	if err := transaction.WithContext(ctx).
		Model(&types.Plant{}).
		Where("category <> ''").
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error; err != nil {
		return nil, dberrors.Map("list plant categories", err)
	}
	return out, nil
}
