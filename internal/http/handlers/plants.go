package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/greenscape-backend/internal/http/response"
	"github.com/yungbote/greenscape-backend/internal/services"
)

type PlantHandler struct {
	catalog services.CatalogService
}

func NewPlantHandler(catalog services.CatalogService) *PlantHandler {
	return &PlantHandler{catalog: catalog}
}

// GET /api/plants?category=&q=&limit=&offset=
func (h *PlantHandler) ListPlants(c *gin.Context) {
	page, err := h.catalog.List(c.Request.Context(), services.ListQuery{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Limit:    queryInt(c, "limit"),
		Offset:   queryInt(c, "offset"),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/plants/criteria-options
func (h *PlantHandler) CriteriaOptions(c *gin.Context) {
	opts, err := h.catalog.CriteriaOptions(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, opts)
}

// queryInt returns 0 for a missing or malformed value; services apply their defaults.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
