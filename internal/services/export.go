package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	types "github.com/yungbote/greenscape-backend/internal/domain"
	pkgerrors "github.com/yungbote/greenscape-backend/internal/pkg/errors"
	"github.com/yungbote/greenscape-backend/internal/platform/apierr"
)

// ExportColumns is the CSV header, in column order.
var ExportColumns = []string{
	"id", "name", "common_name", "category", "score",
	"height", "width", "sun", "water", "maintenance",
	"native", "price", "match_reasons", "warnings",
}

// ExportRow is one recommended plant re-joined with its current catalog record.
type ExportRow struct {
	PlantID      uint
	Name         string
	CommonName   string
	Category     string
	Score        float64
	Height       string
	Width        string
	Sun          string
	Water        string
	Maintenance  string
	Native       bool
	Price        *float64
	MatchReasons []string
	Warnings     []string
}

// Export expands a logged request into rows in stored order. Plants removed from the
// catalog since the request was made are skipped.
func (s *recommendationService) Export(ctx context.Context, requestID uint) ([]ExportRow, error) {
	if requestID == 0 {
		return nil, apierr.New(http.StatusBadRequest, "missing_request_id", errors.New("request_id is required"))
	}
	req, err := s.requests.GetByID(ctx, nil, requestID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, apierr.New(http.StatusNotFound, "request_not_found", fmt.Errorf("recommendation request %d not found", requestID))
		}
		return nil, apierr.New(http.StatusInternalServerError, "export_failed", err)
	}
	plants, err := s.plants.GetByIDs(ctx, nil, req.PlantIDs())
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "export_failed", err)
	}
	byID := make(map[uint]*types.Plant, len(plants))
	for _, p := range plants {
		byID[p.ID] = p
	}

	rows := make([]ExportRow, 0, len(req.RecommendedPlants))
	for _, rp := range req.RecommendedPlants {
		p, ok := byID[rp.PlantID]
		if !ok {
			s.log.Debug("Skipping plant missing from catalog", "request_id", requestID, "plant_id", rp.PlantID)
			continue
		}
		rows = append(rows, ExportRow{
			PlantID:      p.ID,
			Name:         p.Name,
			CommonName:   p.CommonName,
			Category:     p.Category,
			Score:        rp.TotalScore,
			Height:       formatSize(p.HeightMin, p.HeightMax),
			Width:        formatSize(p.WidthMin, p.WidthMax),
			Sun:          p.SunRequirements,
			Water:        p.WaterNeeds,
			Maintenance:  p.Maintenance,
			Native:       p.Native,
			Price:        p.Price,
			MatchReasons: rp.MatchReasons,
			Warnings:     rp.Warnings,
		})
	}
	return rows, nil
}

// WriteCSV writes a header row followed by one row per ExportRow.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for _, r := range rows {
		price := ""
		if r.Price != nil {
			price = strconv.FormatFloat(*r.Price, 'f', 2, 64)
		}
		if err := cw.Write([]string{
			strconv.FormatUint(uint64(r.PlantID), 10),
			r.Name,
			r.CommonName,
			r.Category,
			strconv.FormatFloat(r.Score, 'f', 3, 64),
			r.Height,
			r.Width,
			r.Sun,
			r.Water,
			r.Maintenance,
			strconv.FormatBool(r.Native),
			price,
			strings.Join(r.MatchReasons, "; "),
			strings.Join(r.Warnings, "; "),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatSize(lo, hi *float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case lo != nil && hi != nil:
		if *lo == *hi {
			return f(*lo)
		}
		return f(*lo) + "-" + f(*hi)
	case lo != nil:
		return f(*lo) + "+"
	case hi != nil:
		return "up to " + f(*hi)
	}
	return ""
}
