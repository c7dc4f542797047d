package services

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/platform/apierr"
)

// plantRecord is the on-disk catalog shape; field names follow the API's JSON names.
type plantRecord struct {
	Name               string   `yaml:"name"`
	CommonName         string   `yaml:"common_name"`
	Category           string   `yaml:"category"`
	SunRequirements    string   `yaml:"sun_requirements"`
	WaterNeeds         string   `yaml:"water_needs"`
	SoilType           string   `yaml:"soil_type"`
	HardinessZone      string   `yaml:"hardiness_zone"`
	HeightMin          *float64 `yaml:"height_min"`
	HeightMax          *float64 `yaml:"height_max"`
	WidthMin           *float64 `yaml:"width_min"`
	WidthMax           *float64 `yaml:"width_max"`
	BloomTime          string   `yaml:"bloom_time"`
	BloomColor         string   `yaml:"bloom_color"`
	FoliageColor       string   `yaml:"foliage_color"`
	Maintenance        string   `yaml:"maintenance"`
	Native             bool     `yaml:"native"`
	DeerResistant      bool     `yaml:"deer_resistant"`
	PollinatorFriendly bool     `yaml:"pollinator_friendly"`
	WildlifeValue      string   `yaml:"wildlife_value"`
	Price              *float64 `yaml:"price"`
	SoilPHMin          *float64 `yaml:"soil_ph_min"`
	SoilPHMax          *float64 `yaml:"soil_ph_max"`
	Drainage           string   `yaml:"drainage"`
	GrowthRate         string   `yaml:"growth_rate"`
	Evergreen          bool     `yaml:"evergreen"`
	DroughtTolerant    bool     `yaml:"drought_tolerant"`
	SaltTolerant       bool     `yaml:"salt_tolerant"`
	Suitable           struct {
		Containers  bool `yaml:"containers"`
		Hedging     bool `yaml:"hedging"`
		Screening   bool `yaml:"screening"`
		Groundcover bool `yaml:"groundcover"`
		Slopes      bool `yaml:"slopes"`
	} `yaml:"suitable"`
	Notes string `yaml:"notes"`
}

type catalogFile struct {
	Plants []plantRecord `yaml:"plants"`
}

// decodeCatalogYAML accepts either a top-level list or a document with a plants key.
func decodeCatalogYAML(r io.Reader) ([]*types.Plant, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_catalog", fmt.Errorf("parse catalog: %w", err))
	}
	if len(root.Content) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_catalog", errors.New("catalog document is empty"))
	}

	var records []plantRecord
	switch doc := root.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		err = doc.Decode(&records)
	case yaml.MappingNode:
		var f catalogFile
		err = doc.Decode(&f)
		records = f.Plants
	default:
		err = errors.New("expected a list of plants or a plants: key")
	}
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, "invalid_catalog", fmt.Errorf("decode catalog: %w", err))
	}

	out := make([]*types.Plant, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toPlant())
	}
	return out, nil
}

func (rec plantRecord) toPlant() *types.Plant {
	return &types.Plant{
		Name:                rec.Name,
		CommonName:          rec.CommonName,
		Category:            rec.Category,
		SunRequirements:     rec.SunRequirements,
		WaterNeeds:          rec.WaterNeeds,
		SoilType:            rec.SoilType,
		HardinessZone:       rec.HardinessZone,
		HeightMin:           rec.HeightMin,
		HeightMax:           rec.HeightMax,
		WidthMin:            rec.WidthMin,
		WidthMax:            rec.WidthMax,
		BloomTime:           rec.BloomTime,
		BloomColor:          rec.BloomColor,
		FoliageColor:        rec.FoliageColor,
		Maintenance:         rec.Maintenance,
		Native:              rec.Native,
		DeerResistant:       rec.DeerResistant,
		PollinatorFriendly:  rec.PollinatorFriendly,
		WildlifeValue:       rec.WildlifeValue,
		Price:               rec.Price,
		SoilPHMin:           rec.SoilPHMin,
		SoilPHMax:           rec.SoilPHMax,
		Drainage:            rec.Drainage,
		GrowthRate:          rec.GrowthRate,
		Evergreen:           rec.Evergreen,
		DroughtTolerant:     rec.DroughtTolerant,
		SaltTolerant:        rec.SaltTolerant,
		SuitableContainers:  rec.Suitable.Containers,
		SuitableHedging:     rec.Suitable.Hedging,
		SuitableScreening:   rec.Suitable.Screening,
		SuitableGroundcover: rec.Suitable.Groundcover,
		SuitableSlopes:      rec.Suitable.Slopes,
		Notes:               rec.Notes,
	}
}
