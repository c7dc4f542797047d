package domain

import (
	"github.com/yungbote/greenscape-backend/internal/domain/plant"
	"github.com/yungbote/greenscape-backend/internal/domain/recommendation"
)

const (
	RequestAwaitingFeedback = recommendation.StatusAwaitingFeedback
	RequestFeedbackReceived = recommendation.StatusFeedbackReceived

	WildlifeLow    = plant.WildlifeLow
	WildlifeMedium = plant.WildlifeMedium
	WildlifeHigh   = plant.WildlifeHigh
)

type (
	Plant                      = plant.Plant
	PlantRecommendationRequest = recommendation.Request
	RecommendedPlant           = recommendation.RecommendedPlant
)
