package recommendation

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusAwaitingFeedback = "awaiting_feedback"
	StatusFeedbackReceived = "feedback_received"
)

// RecommendedPlant is the summarized form of a scored result kept on the request row.
type RecommendedPlant struct {
	PlantID      uint     `json:"plant_id"`
	TotalScore   float64  `json:"total_score"`
	MatchReasons []string `json:"match_reasons"`
	Warnings     []string `json:"warnings"`
}

// Request records one recommendation call. Criteria fields that are useful for
// querying history are mirrored into columns; the full criteria live in Criteria.
type Request struct {
	ID uint `gorm:"primaryKey" json:"id"`

	HardinessZone              *int     `gorm:"column:hardiness_zone" json:"hardiness_zone,omitempty"`
	SunExposure                string   `gorm:"column:sun_exposure" json:"sun_exposure,omitempty"`
	SoilType                   string   `gorm:"column:soil_type" json:"soil_type,omitempty"`
	MoistureLevel              string   `gorm:"column:moisture_level" json:"moisture_level,omitempty"`
	MaintenanceLevel           string   `gorm:"column:maintenance_level" json:"maintenance_level,omitempty"`
	BloomSeason                string   `gorm:"column:bloom_season" json:"bloom_season,omitempty"`
	NativePreference           bool     `gorm:"column:native_preference;not null;default:false" json:"native_preference"`
	DeerResistantRequired      bool     `gorm:"column:deer_resistant_required;not null;default:false" json:"deer_resistant_required"`
	PollinatorFriendlyRequired bool     `gorm:"column:pollinator_friendly_required;not null;default:false" json:"pollinator_friendly_required"`
	BudgetMax                  *float64 `gorm:"column:budget_max" json:"budget_max,omitempty"`

	Criteria        datatypes.JSON `gorm:"column:criteria" json:"criteria"`
	MaxResults      int            `gorm:"column:max_results;not null" json:"max_results"`
	MinScore        float64        `gorm:"column:min_score;not null" json:"min_score"`
	PlantsEvaluated int            `gorm:"column:plants_evaluated;not null;default:0" json:"plants_evaluated"`

	RecommendedPlants datatypes.JSONSlice[RecommendedPlant] `gorm:"column:recommended_plants" json:"recommended_plants"`

	UserID    string `gorm:"column:user_id;index" json:"user_id,omitempty"`
	SessionID string `gorm:"column:session_id;index" json:"session_id,omitempty"`
	IPAddress string `gorm:"column:ip_address" json:"ip_address,omitempty"`

	FeedbackRating *int           `gorm:"column:feedback_rating" json:"feedback_rating,omitempty"`
	UserFeedback   datatypes.JSON `gorm:"column:user_feedback" json:"user_feedback,omitempty"`
	FeedbackAt     *time.Time     `gorm:"column:feedback_at" json:"feedback_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Request) TableName() string { return "plant_recommendation_request" }

// Status is derived from feedback_at; a request leaves awaiting_feedback exactly once.
func (r *Request) Status() string {
	if r == nil || r.FeedbackAt == nil {
		return StatusAwaitingFeedback
	}
	return StatusFeedbackReceived
}

// PlantIDs returns the recommended plant ids in stored order.
func (r *Request) PlantIDs() []uint {
	if r == nil {
		return nil
	}
	ids := make([]uint, 0, len(r.RecommendedPlants))
	for _, rp := range r.RecommendedPlants {
		ids = append(ids, rp.PlantID)
	}
	return ids
}
