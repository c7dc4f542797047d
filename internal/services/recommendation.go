package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/data/repos/catalog"
	"github.com/yungbote/greenscape-backend/internal/data/repos/recommendation"
	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/observability"
	"github.com/yungbote/greenscape-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/greenscape-backend/internal/pkg/errors"
	"github.com/yungbote/greenscape-backend/internal/platform/apierr"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
	"github.com/yungbote/greenscape-backend/internal/recommend"
)

type RecommendConfig struct {
	DefaultMaxResults int
	MaxResultsCap     int
	DefaultMinScore   float64
	HistoryLimitCap   int
	// StatsConcurrency bounds the parallel aggregate queries in Stats.
	StatsConcurrency int
	// TopPlantsWindow is how many recent requests Stats aggregates top plants from.
	TopPlantsWindow int
}

func (c RecommendConfig) withDefaults() RecommendConfig {
	if c.DefaultMaxResults <= 0 {
		c.DefaultMaxResults = recommend.DefaultMaxResults
	}
	if c.MaxResultsCap <= 0 {
		c.MaxResultsCap = 100
	}
	if c.DefaultMaxResults > c.MaxResultsCap {
		c.DefaultMaxResults = c.MaxResultsCap
	}
	if math.IsNaN(c.DefaultMinScore) || c.DefaultMinScore < 0 || c.DefaultMinScore > 1 {
		c.DefaultMinScore = recommend.DefaultMinScore
	}
	if c.HistoryLimitCap <= 0 {
		c.HistoryLimitCap = 100
	}
	if c.StatsConcurrency <= 0 {
		c.StatsConcurrency = 4
	}
	if c.TopPlantsWindow <= 0 {
		c.TopPlantsWindow = 500
	}
	return c
}

const (
	defaultHistoryLimit = 20
	topPlantsLimit      = 10
)

// Identity is who asked; all fields are optional.
type Identity struct {
	UserID    string
	SessionID string
	IPAddress string
}

type RecommendInput struct {
	Criteria   recommend.Criteria
	MaxResults *int
	MinScore   *float64
	Identity   Identity
}

type Result struct {
	Recommendations []recommend.Scored `json:"recommendations"`
	// RequestID is nil when the request could not be logged.
	RequestID       *uint             `json:"request_id"`
	PlantsEvaluated int               `json:"plants_evaluated"`
	CriteriaSummary map[string]string `json:"criteria_summary"`
}

type HistoryQuery struct {
	UserID    string
	SessionID string
	Limit     int
	Offset    int
}

type HistoryPage struct {
	Requests []*types.PlantRecommendationRequest `json:"requests"`
	Total    int64                               `json:"total"`
	Limit    int                                 `json:"limit"`
	Offset   int                                 `json:"offset"`
}

type TopPlant struct {
	PlantID      uint    `json:"plant_id"`
	Name         string  `json:"name,omitempty"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

type Stats struct {
	TotalRequests        int64      `json:"total_requests"`
	RequestsWithFeedback int64      `json:"requests_with_feedback"`
	AverageRating        *float64   `json:"average_rating"`
	TopPlants            []TopPlant `json:"top_plants"`
}

type RecommendationService interface {
	Recommend(ctx context.Context, in RecommendInput) (*Result, error)
	SubmitFeedback(ctx context.Context, requestID uint, feedback json.RawMessage, rating *int) (*types.PlantRecommendationRequest, error)
	History(ctx context.Context, q HistoryQuery) (*HistoryPage, error)
	Export(ctx context.Context, requestID uint) ([]ExportRow, error)
	Stats(ctx context.Context) (*Stats, error)
}

type recommendationService struct {
	db       *gorm.DB
	log      *logger.Logger
	engine   *recommend.Engine
	catalog  CatalogService
	plants   catalog.PlantRepo
	requests recommendation.RequestRepo
	metrics  *observability.Metrics
	cfg      RecommendConfig
	now      func() time.Time
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	engine *recommend.Engine,
	catalogService CatalogService,
	plants catalog.PlantRepo,
	requests recommendation.RequestRepo,
	metrics *observability.Metrics,
	cfg RecommendConfig,
) RecommendationService {
	if engine == nil {
		engine = recommend.NewEngine()
	}
	return &recommendationService{
		db:       db,
		log:      baseLog.With("service", "RecommendationService"),
		engine:   engine,
		catalog:  catalogService,
		plants:   plants,
		requests: requests,
		metrics:  metrics,
		cfg:      cfg.withDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *recommendationService) resolveLimits(in RecommendInput) (int, float64) {
	maxResults := s.cfg.DefaultMaxResults
	if in.MaxResults != nil && *in.MaxResults > 0 {
		maxResults = *in.MaxResults
	}
	if maxResults > s.cfg.MaxResultsCap {
		maxResults = s.cfg.MaxResultsCap
	}
	minScore := s.cfg.DefaultMinScore
	if in.MinScore != nil && !math.IsNaN(*in.MinScore) {
		minScore = math.Max(0, math.Min(1, *in.MinScore))
	}
	return maxResults, minScore
}

func (s *recommendationService) Recommend(ctx context.Context, in RecommendInput) (*Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "recommendation.recommend")
	defer span.End()

	plants, err := s.catalog.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog snapshot")
		return nil, err
	}
	maxResults, minScore := s.resolveLimits(in)

	start := time.Now()
	_, scoreSpan := observability.Tracer().Start(ctx, "recommendation.score")
	scored := s.engine.GetRecommendations(plants, in.Criteria, maxResults, minScore)
	scoreSpan.SetAttributes(
		attribute.Int("plants.evaluated", len(plants)),
		attribute.Int("plants.returned", len(scored)),
		attribute.StringSlice("criteria.active", in.Criteria.ActiveKeys()),
	)
	scoreSpan.End()
	elapsed := time.Since(start)

	res := &Result{
		Recommendations: scored,
		PlantsEvaluated: len(plants),
		CriteriaSummary: recommend.Summary(in.Criteria),
	}

	row, logErr := s.logRequest(ctx, in, maxResults, minScore, len(plants), scored)
	if logErr != nil {
		span.RecordError(logErr)
		s.log.Warn("Recommendation log write failed; returning unlogged result",
			"error", logErr,
			"session_id", in.Identity.SessionID,
			"results", len(scored),
		)
	} else {
		res.RequestID = &row.ID
		span.SetAttributes(attribute.Int64("recommendation.request_id", int64(row.ID)))
	}
	s.metrics.ObserveRecommendation(len(plants), len(scored), elapsed, logErr == nil)

	s.log.Debug("Recommendation served",
		"plants_evaluated", len(plants),
		"results", len(scored),
		"duration_ms", elapsed.Milliseconds(),
		"logged", logErr == nil,
	)
	return res, nil
}

func (s *recommendationService) logRequest(ctx context.Context, in RecommendInput, maxResults int, minScore float64, evaluated int, scored []recommend.Scored) (*types.PlantRecommendationRequest, error) {
	ctx, span := observability.Tracer().Start(ctx, "recommendation.log")
	defer span.End()

	criteriaJSON, err := json.Marshal(in.Criteria)
	if err != nil {
		return nil, fmt.Errorf("encode criteria: %w", err)
	}
	summaries := make(datatypes.JSONSlice[types.RecommendedPlant], 0, len(scored))
	for _, sc := range scored {
		summaries = append(summaries, types.RecommendedPlant{
			PlantID:      sc.Plant.ID,
			TotalScore:   sc.TotalScore,
			MatchReasons: sc.MatchReasons,
			Warnings:     sc.Warnings,
		})
	}
	c := in.Criteria
	row := &types.PlantRecommendationRequest{
		HardinessZone:              c.HardinessZone,
		SunExposure:                c.SunExposure,
		SoilType:                   c.SoilType,
		MoistureLevel:              c.MoistureLevel,
		MaintenanceLevel:           c.MaintenanceLevel,
		BloomSeason:                c.BloomSeason,
		NativePreference:           c.NativePreference,
		DeerResistantRequired:      c.DeerResistantRequired,
		PollinatorFriendlyRequired: c.PollinatorFriendlyRequired,
		BudgetMax:                  c.BudgetMax,
		Criteria:                   datatypes.JSON(criteriaJSON),
		MaxResults:                 maxResults,
		MinScore:                   minScore,
		PlantsEvaluated:            evaluated,
		RecommendedPlants:          summaries,
		UserID:                     in.Identity.UserID,
		SessionID:                  in.Identity.SessionID,
		IPAddress:                  in.Identity.IPAddress,
	}
	created, err := s.requests.Create(ctx, nil, row)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create request")
		return nil, err
	}
	return created, nil
}

// SubmitFeedback records feedback on a logged request. Resubmission overwrites the
// earlier rating and payload and refreshes feedback_at.
func (s *recommendationService) SubmitFeedback(ctx context.Context, requestID uint, feedback json.RawMessage, rating *int) (*types.PlantRecommendationRequest, error) {
	if requestID == 0 {
		return nil, apierr.New(http.StatusBadRequest, "missing_request_id", errors.New("request_id is required"))
	}
	var payload datatypes.JSON
	if len(feedback) > 0 && string(feedback) != "null" {
		if !json.Valid(feedback) {
			return nil, apierr.New(http.StatusBadRequest, "invalid_feedback", errors.New("feedback must be valid JSON"))
		}
		payload = datatypes.JSON(feedback)
	}

	var updated *types.PlantRecommendationRequest
	err := dbctx.Context{Ctx: ctx}.InTx(s.db, func(tx *gorm.DB) error {
		if err := s.requests.UpdateFeedback(ctx, tx, requestID, recommendation.FeedbackUpdate{
			Rating:   rating,
			Feedback: payload,
			At:       s.now(),
		}); err != nil {
			return err
		}
		row, err := s.requests.GetByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		updated = row
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, apierr.New(http.StatusNotFound, "request_not_found", fmt.Errorf("recommendation request %d not found", requestID))
		}
		s.log.Error("Feedback update failed", "error", err, "request_id", requestID)
		return nil, apierr.New(http.StatusInternalServerError, "feedback_failed", err)
	}
	s.metrics.IncFeedback(rating)
	return updated, nil
}

func (s *recommendationService) History(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	if q.UserID == "" && q.SessionID == "" {
		return nil, apierr.New(http.StatusBadRequest, "missing_identity", errors.New("user_id or session_id is required"))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > s.cfg.HistoryLimitCap {
		limit = s.cfg.HistoryLimitCap
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	rows, total, err := s.requests.ListByIdentity(ctx, nil, recommendation.HistoryFilter{
		UserID:    q.UserID,
		SessionID: q.SessionID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "history_failed", err)
	}
	return &HistoryPage{Requests: rows, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *recommendationService) Stats(ctx context.Context) (*Stats, error) {
	var (
		out    Stats
		recent []*types.PlantRecommendationRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.StatsConcurrency)
	g.Go(func() error {
		n, err := s.requests.CountAll(gctx, nil)
		out.TotalRequests = n
		return err
	})
	g.Go(func() error {
		n, err := s.requests.CountWithFeedback(gctx, nil)
		out.RequestsWithFeedback = n
		return err
	})
	g.Go(func() error {
		avg, err := s.requests.AverageRating(gctx, nil)
		if avg != nil {
			rounded := math.Round(*avg*100) / 100
			avg = &rounded
		}
		out.AverageRating = avg
		return err
	})
	g.Go(func() error {
		rows, err := s.requests.ListRecentResults(gctx, nil, s.cfg.TopPlantsWindow)
		recent = rows
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Stats aggregation failed", "error", err)
		return nil, apierr.New(http.StatusInternalServerError, "stats_failed", err)
	}

	out.TopPlants = aggregateTopPlants(recent, topPlantsLimit)
	ids := make([]uint, 0, len(out.TopPlants))
	for _, tp := range out.TopPlants {
		ids = append(ids, tp.PlantID)
	}
	plants, err := s.plants.GetByIDs(ctx, nil, ids)
	if err != nil {
		s.log.Warn("Stats plant name lookup failed", "error", err)
		return &out, nil
	}
	names := make(map[uint]string, len(plants))
	for _, p := range plants {
		names[p.ID] = p.DisplayName()
	}
	for i := range out.TopPlants {
		out.TopPlants[i].Name = names[out.TopPlants[i].PlantID]
	}
	return &out, nil
}

// aggregateTopPlants ranks plants by how often they were recommended, then by average
// score, then by id.
func aggregateTopPlants(rows []*types.PlantRecommendationRequest, limit int) []TopPlant {
	type acc struct {
		count int
		sum   float64
	}
	byID := map[uint]*acc{}
	for _, r := range rows {
		if r == nil {
			continue
		}
		for _, rp := range r.RecommendedPlants {
			a := byID[rp.PlantID]
			if a == nil {
				a = &acc{}
				byID[rp.PlantID] = a
			}
			a.count++
			a.sum += rp.TotalScore
		}
	}
	out := make([]TopPlant, 0, len(byID))
	for id, a := range byID {
		out = append(out, TopPlant{
			PlantID:      id,
			Count:        a.count,
			AverageScore: math.Round(a.sum/float64(a.count)*1000) / 1000,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].AverageScore != out[j].AverageScore {
			return out[i].AverageScore > out[j].AverageScore
		}
		return out[i].PlantID < out[j].PlantID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
