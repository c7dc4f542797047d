package plant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	WildlifeLow    = "Low"
	WildlifeMedium = "Medium"
	WildlifeHigh   = "High"
)

// Plant is one catalog record. Optional horticultural attributes are pointers or empty
// strings; the scoring engine treats those as unknown rather than as a mismatch.
type Plant struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"column:name;not null;uniqueIndex" json:"name"`
	CommonName string `gorm:"column:common_name;index" json:"common_name"`
	Category   string `gorm:"column:category;index" json:"category"`

	SunRequirements string `gorm:"column:sun_requirements" json:"sun_requirements"`
	WaterNeeds      string `gorm:"column:water_needs" json:"water_needs"`
	SoilType        string `gorm:"column:soil_type" json:"soil_type"`
	HardinessZone   string `gorm:"column:hardiness_zone" json:"hardiness_zone"`

	// Sizes are in inches.
	HeightMin *float64 `gorm:"column:height_min" json:"height_min,omitempty"`
	HeightMax *float64 `gorm:"column:height_max" json:"height_max,omitempty"`
	WidthMin  *float64 `gorm:"column:width_min" json:"width_min,omitempty"`
	WidthMax  *float64 `gorm:"column:width_max" json:"width_max,omitempty"`

	BloomTime    string `gorm:"column:bloom_time" json:"bloom_time"`
	BloomColor   string `gorm:"column:bloom_color" json:"bloom_color"`
	FoliageColor string `gorm:"column:foliage_color" json:"foliage_color"`
	Maintenance  string `gorm:"column:maintenance" json:"maintenance"`

	Native             bool   `gorm:"column:native;not null;default:false;index" json:"native"`
	DeerResistant      bool   `gorm:"column:deer_resistant;not null;default:false" json:"deer_resistant"`
	PollinatorFriendly bool   `gorm:"column:pollinator_friendly;not null;default:false" json:"pollinator_friendly"`
	WildlifeValue      string `gorm:"column:wildlife_value" json:"wildlife_value"`

	Price *float64 `gorm:"column:price" json:"price,omitempty"`

	SoilPHMin       *float64 `gorm:"column:soil_ph_min" json:"soil_ph_min,omitempty"`
	SoilPHMax       *float64 `gorm:"column:soil_ph_max" json:"soil_ph_max,omitempty"`
	Drainage        string   `gorm:"column:drainage" json:"drainage"`
	GrowthRate      string   `gorm:"column:growth_rate" json:"growth_rate"`
	Evergreen       bool     `gorm:"column:evergreen;not null;default:false" json:"evergreen"`
	DroughtTolerant bool     `gorm:"column:drought_tolerant;not null;default:false" json:"drought_tolerant"`
	SaltTolerant    bool     `gorm:"column:salt_tolerant;not null;default:false" json:"salt_tolerant"`

	SuitableContainers  bool `gorm:"column:suitable_containers;not null;default:false" json:"suitable_containers"`
	SuitableHedging     bool `gorm:"column:suitable_hedging;not null;default:false" json:"suitable_hedging"`
	SuitableScreening   bool `gorm:"column:suitable_screening;not null;default:false" json:"suitable_screening"`
	SuitableGroundcover bool `gorm:"column:suitable_groundcover;not null;default:false" json:"suitable_groundcover"`
	SuitableSlopes      bool `gorm:"column:suitable_slopes;not null;default:false" json:"suitable_slopes"`

	Notes string `gorm:"column:notes" json:"notes,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Plant) TableName() string { return "plants" }

// DisplayName prefers the common name.
func (p *Plant) DisplayName() string {
	if p == nil {
		return ""
	}
	if s := strings.TrimSpace(p.CommonName); s != "" {
		return s
	}
	return p.Name
}

// Validate checks the catalog invariants enforced on import.
func (p *Plant) Validate() error {
	if p == nil {
		return errors.New("plant is nil")
	}
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.HeightMin != nil && p.HeightMax != nil && *p.HeightMin > *p.HeightMax {
		problems = append(problems, fmt.Sprintf("height_min %.1f exceeds height_max %.1f", *p.HeightMin, *p.HeightMax))
	}
	if p.WidthMin != nil && p.WidthMax != nil && *p.WidthMin > *p.WidthMax {
		problems = append(problems, fmt.Sprintf("width_min %.1f exceeds width_max %.1f", *p.WidthMin, *p.WidthMax))
	}
	for _, v := range []*float64{p.HeightMin, p.HeightMax, p.WidthMin, p.WidthMax} {
		if v != nil && *v < 0 {
			problems = append(problems, "sizes must be non-negative")
			break
		}
	}
	for _, v := range []*float64{p.SoilPHMin, p.SoilPHMax} {
		if v != nil && (*v < 0 || *v > 14) {
			problems = append(problems, fmt.Sprintf("soil pH %.1f outside 0-14", *v))
		}
	}
	if p.SoilPHMin != nil && p.SoilPHMax != nil && *p.SoilPHMin > *p.SoilPHMax {
		problems = append(problems, "soil_ph_min exceeds soil_ph_max")
	}
	if p.Price != nil && *p.Price < 0 {
		problems = append(problems, "price must be non-negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid plant %q: %s", p.Name, strings.Join(problems, "; "))
	}
	return nil
}
