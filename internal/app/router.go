package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/greenscape-backend/internal/http"
	"github.com/yungbote/greenscape-backend/internal/observability"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:                   log.With("component", "http"),
		ServiceName:           serviceName,
		CORSOrigins:           cfg.Server.CORSOrigins,
		Metrics:               metrics,
		HealthHandler:         handlers.Health,
		PlantHandler:          handlers.Plant,
		RecommendationHandler: handlers.Recommendation,
	})
}
