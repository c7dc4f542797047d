package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/greenscape-backend/internal/http/response"
	"github.com/yungbote/greenscape-backend/internal/platform/ctxutil"
	"github.com/yungbote/greenscape-backend/internal/recommend"
	"github.com/yungbote/greenscape-backend/internal/services"
)

type RecommendationHandler struct {
	recs services.RecommendationService
}

func NewRecommendationHandler(recs services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recs: recs}
}

// POST /api/recommendations
// body: { "criteria": {...}, "max_results": 10, "min_score": 0.3 }
// Criteria may also be given at the top level of the body.
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if body == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("criteria payload is required"))
		return
	}

	raw := body
	if nested, ok := body["criteria"]; ok {
		m, ok := nested.(map[string]any)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_criteria", errors.New("criteria must be an object"))
			return
		}
		raw = m
	}

	in := services.RecommendInput{
		Criteria: recommend.ParseCriteria(raw),
		Identity: identityFrom(c),
	}
	maxResults, err := maxResultsField(body)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in.MaxResults = maxResults
	if v, present := body["min_score"]; present && v != nil {
		f, ok := v.(float64)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("min_score must be a number"))
			return
		}
		in.MinScore = &f
	}

	res, err := h.recs.Recommend(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/recommendations/:id/feedback
// body: { "feedback": {...}, "rating": 4 }
func (h *RecommendationHandler) SubmitFeedback(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	var req struct {
		Feedback json.RawMessage `json:"feedback"`
		Rating   *int            `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, err := h.recs.SubmitFeedback(c.Request.Context(), id, req.Feedback, req.Rating)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "request_id": row.ID, "status": row.Status()})
}

// GET /api/recommendations/history?user_id=&session_id=&limit=&offset=
// Without query identity the caller's own headers are used.
func (h *RecommendationHandler) History(c *gin.Context) {
	q := services.HistoryQuery{
		UserID:    c.Query("user_id"),
		SessionID: c.Query("session_id"),
		Limit:     queryInt(c, "limit"),
		Offset:    queryInt(c, "offset"),
	}
	if q.UserID == "" && q.SessionID == "" {
		id := identityFrom(c)
		q.UserID = id.UserID
		if q.UserID == "" {
			q.SessionID = id.SessionID
		}
	}
	page, err := h.recs.History(c.Request.Context(), q)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/recommendations/:id/export
func (h *RecommendationHandler) Export(c *gin.Context) {
	id, ok := requestIDParam(c)
	if !ok {
		return
	}
	rows, err := h.recs.Export(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="recommendations-%d.csv"`, id))
	c.Status(http.StatusOK)
	if err := services.WriteCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// GET /api/recommendations/stats
func (h *RecommendationHandler) Stats(c *gin.Context) {
	stats, err := h.recs.Stats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// maxResultsField returns nil when absent; present values must be whole numbers >= 1.
// The service clamps to its configured cap.
func maxResultsField(body map[string]any) (*int, error) {
	v, present := body["max_results"]
	if !present || v == nil {
		return nil, nil
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || f != math.Trunc(f) || f < 1 || f > math.MaxInt32 {
		return nil, fmt.Errorf("max_results must be a whole number between 1 and %d", math.MaxInt32)
	}
	n := int(f)
	return &n, nil
}

func requestIDParam(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request_id", fmt.Errorf("invalid request id %q", c.Param("id")))
		return 0, false
	}
	return uint(n), true
}

func identityFrom(c *gin.Context) services.Identity {
	id := ctxutil.GetIdentity(c.Request.Context())
	if id == nil {
		return services.Identity{IPAddress: c.ClientIP()}
	}
	return services.Identity{UserID: id.UserID, SessionID: id.SessionID, IPAddress: id.IPAddress}
}
