package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/greenscape-backend/internal/http/handlers"
	httpMW "github.com/yungbote/greenscape-backend/internal/http/middleware"
	"github.com/yungbote/greenscape-backend/internal/observability"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	HealthHandler         *httpH.HealthHandler
	PlantHandler          *httpH.PlantHandler
	RecommendationHandler *httpH.RecommendationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readycheck", cfg.HealthHandler.ReadyCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Catalog
		if cfg.PlantHandler != nil {
			api.GET("/plants", cfg.PlantHandler.ListPlants)
			api.GET("/plants/criteria-options", cfg.PlantHandler.CriteriaOptions)
		}

		// Recommendations
		if cfg.RecommendationHandler != nil {
			api.POST("/recommendations", cfg.RecommendationHandler.Recommend)
			api.GET("/recommendations/history", cfg.RecommendationHandler.History)
			api.GET("/recommendations/stats", cfg.RecommendationHandler.Stats)
			api.POST("/recommendations/:id/feedback", cfg.RecommendationHandler.SubmitFeedback)
			api.GET("/recommendations/:id/export", cfg.RecommendationHandler.Export)
		}
	}

	return r
}
