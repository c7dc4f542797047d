package recommendation

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/data/repos/dberrors"
	types "github.com/yungbote/greenscape-backend/internal/domain"
	pkgerrors "github.com/yungbote/greenscape-backend/internal/pkg/errors"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type HistoryFilter struct {
	UserID    string
	SessionID string
	Limit     int
	Offset    int
}

type FeedbackUpdate struct {
	Rating   *int
	Feedback datatypes.JSON
	At       time.Time
}

type RequestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, req *types.PlantRecommendationRequest) (*types.PlantRecommendationRequest, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.PlantRecommendationRequest, error)
	UpdateFeedback(ctx context.Context, tx *gorm.DB, id uint, update FeedbackUpdate) error
	ListByIdentity(ctx context.Context, tx *gorm.DB, filter HistoryFilter) ([]*types.PlantRecommendationRequest, int64, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
	CountWithFeedback(ctx context.Context, tx *gorm.DB) (int64, error)
	AverageRating(ctx context.Context, tx *gorm.DB) (*float64, error)
	ListRecentResults(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PlantRecommendationRequest, error)
}

type requestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRequestRepo(db *gorm.DB, baseLog *logger.Logger) RequestRepo {
	repoLog := baseLog.With("repo", "RecommendationRequestRepo")
	return &requestRepo{db: db, log: repoLog}
}

func (r *requestRepo) Create(ctx context.Context, tx *gorm.DB, req *types.PlantRecommendationRequest) (*types.PlantRecommendationRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if req == nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(req).Error; err != nil {
		return nil, dberrors.Map("create recommendation request", err)
	}
	return req, nil
}

func (r *requestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.PlantRecommendationRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var out types.PlantRecommendationRequest
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&out).Error; err != nil {
		return nil, dberrors.Map("get recommendation request", err)
	}
	return &out, nil
}

// UpdateFeedback overwrites any earlier feedback on the request.
func (r *requestRepo) UpdateFeedback(ctx context.Context, tx *gorm.DB, id uint, update FeedbackUpdate) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	at := update.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	var feedback any
	if len(update.Feedback) > 0 {
		feedback = update.Feedback
	}
	res := transaction.WithContext(ctx).
		Model(&types.PlantRecommendationRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"feedback_rating": update.Rating,
			"user_feedback":   feedback,
			"feedback_at":     at,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return dberrors.Map("update recommendation feedback", res.Error)
	}
	if res.RowsAffected == 0 {
		return dberrors.Map("update recommendation feedback", pkgerrors.ErrNotFound)
	}
	return nil
}

func (r *requestRepo) ListByIdentity(ctx context.Context, tx *gorm.DB, filter HistoryFilter) ([]*types.PlantRecommendationRequest, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	userID := strings.TrimSpace(filter.UserID)
	sessionID := strings.TrimSpace(filter.SessionID)
	if userID == "" && sessionID == "" {
		return nil, 0, pkgerrors.ErrInvalidArgument
	}

	q := transaction.WithContext(ctx).Model(&types.PlantRecommendationRequest{})
	switch {
	case userID != "" && sessionID != "":
		q = q.Where("user_id = ? OR session_id = ?", userID, sessionID)
	case userID != "":
		q = q.Where("user_id = ?", userID)
	default:
		q = q.Where("session_id = ?", sessionID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dberrors.Map("count recommendation history", err)
	}

	var results []*types.PlantRecommendationRequest
	page := q.Order("created_at DESC, id DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if err := page.Find(&results).Error; err != nil {
		return nil, 0, dberrors.Map("list recommendation history", err)
	}
	return results, total, nil
}

func (r *requestRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.PlantRecommendationRequest{}).
		Count(&n).Error; err != nil {
		return 0, dberrors.Map("count recommendation requests", err)
	}
	return n, nil
}

func (r *requestRepo) CountWithFeedback(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.PlantRecommendationRequest{}).
		Where("feedback_at IS NOT NULL").
		Count(&n).Error; err != nil {
		return 0, dberrors.Map("count recommendation feedback", err)
	}
	return n, nil
}

// AverageRating is nil when no request has a rating.
func (r *requestRepo) AverageRating(ctx context.Context, tx *gorm.DB) (*float64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var avg sql.NullFloat64
	row := transaction.WithContext(ctx).
		Model(&types.PlantRecommendationRequest{}).
		Where("feedback_rating IS NOT NULL").
		Select("AVG(feedback_rating)").
		Row()
	if err := row.Scan(&avg); err != nil {
		return nil, dberrors.Map("average recommendation rating", err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// ListRecentResults loads only the stored result lists of the newest requests.
func (r *requestRepo) ListRecentResults(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PlantRecommendationRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 500
	}
	var results []*types.PlantRecommendationRequest
	if err := transaction.WithContext(ctx).
		Select("id", "recommended_plants", "created_at").
		Order("id DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, dberrors.Map("list recent recommendation results", err)
	}
	return results, nil
}
