package recommend

import (
	"math"
	"sort"

	"github.com/yungbote/greenscape-backend/internal/domain/plant"
)

const (
	DefaultMaxResults = 10
	DefaultMinScore   = 0.3

	DefaultAdjacentScore = 0.5
	DefaultUnknownScore  = 0.5
	DefaultGoodMatch     = 0.7
	DefaultPoorMatch     = 0.4
)

// Scored is one ranked plant with its explanation.
type Scored struct {
	Plant        *plant.Plant       `json:"plant"`
	TotalScore   float64            `json:"total_score"`
	Scores       map[string]float64 `json:"scores"`
	MatchReasons []string           `json:"match_reasons"`
	Warnings     []string           `json:"warnings"`
}

// Engine scores catalog plants against criteria. It holds configuration only and is safe
// for concurrent use.
type Engine struct {
	weights       Weights
	adjacentScore float64
	unknownScore  float64
	goodMatch     float64
	poorMatch     float64
	soilGraph     map[string]map[string]bool
}

type Option func(*Engine)

// WithWeights replaces the default weight table. Keys missing from w weigh zero.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		if w != nil {
			e.weights = Weights{}.Merge(w)
		}
	}
}

func WithAdjacentScore(v float64) Option {
	return func(e *Engine) {
		if finite(v) && v >= 0 && v <= 1 {
			e.adjacentScore = v
		}
	}
}

func WithUnknownScore(v float64) Option {
	return func(e *Engine) {
		if finite(v) && v >= 0 && v <= 1 {
			e.unknownScore = v
		}
	}
}

// WithThresholds sets the score at or above which a match reason is given and the score
// below which a warning is given.
func WithThresholds(good, poor float64) Option {
	return func(e *Engine) {
		if finite(good) && finite(poor) && poor <= good {
			e.goodMatch, e.poorMatch = good, poor
		}
	}
}

// WithSoilAdjacency replaces the soil neighbour table. Pairs are symmetric.
func WithSoilAdjacency(pairs map[string][]string) Option {
	return func(e *Engine) {
		if pairs != nil {
			e.soilGraph = buildSoilGraph(pairs)
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:       DefaultWeights(),
		adjacentScore: DefaultAdjacentScore,
		unknownScore:  DefaultUnknownScore,
		goodMatch:     DefaultGoodMatch,
		poorMatch:     DefaultPoorMatch,
		soilGraph:     buildSoilGraph(DefaultSoilAdjacency()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetRecommendations scores every plant in catalog, drops plants failing a required
// criterion or scoring under minScore, ranks the rest by total score (then name, then id)
// and returns at most maxResults. maxResults <= 0 uses DefaultMaxResults; minScore is
// clamped to [0,1]. It has no side effects and never fails.
func (e *Engine) GetRecommendations(catalog []*plant.Plant, c Criteria, maxResults int, minScore float64) []Scored {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	switch {
	case math.IsNaN(minScore):
		minScore = DefaultMinScore
	case minScore < 0:
		minScore = 0
	case minScore > 1:
		minScore = 1
	}

	n := c.normalize()
	weights := e.weights.Merge(c.Weights)
	var active []criterion
	for _, cr := range criteria {
		if cr.active(&n) {
			active = append(active, cr)
		}
	}

	out := make([]Scored, 0, len(catalog))
	for _, p := range catalog {
		if p == nil {
			continue
		}
		s, ok := e.scorePlant(active, weights, &n, p)
		if !ok || s.TotalScore < minScore {
			continue
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.Plant.Name != b.Plant.Name {
			return a.Plant.Name < b.Plant.Name
		}
		return a.Plant.ID < b.Plant.ID
	})
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// scorePlant returns ok=false when the plant fails a required criterion.
func (e *Engine) scorePlant(active []criterion, weights Weights, n *normalized, p *plant.Plant) (Scored, bool) {
	s := Scored{
		Plant:        p,
		Scores:       make(map[string]float64, len(active)),
		MatchReasons: []string{},
		Warnings:     []string{},
	}
	var sum, sumW float64
	for _, cr := range active {
		o := cr.eval(e, n, p)
		if o.excluded {
			return Scored{}, false
		}
		if o.missing {
			o.score = e.unknownScore
			s.Warnings = append(s.Warnings, cr.label+" unknown for this plant")
		} else {
			switch {
			case o.score >= e.goodMatch && o.good != "":
				s.MatchReasons = append(s.MatchReasons, o.good)
			case o.score < e.poorMatch && !cr.preference && o.poor != "":
				s.Warnings = append(s.Warnings, o.poor)
			}
		}
		o.score = clamp01(o.score)
		s.Scores[cr.key] = round3(o.score)

		w := weights.get(cr.key)
		sum += o.score * w
		sumW += w
	}
	if sumW <= 0 {
		s.TotalScore = 1
		return s, true
	}
	s.TotalScore = round3(clamp01(sum / sumW))
	return s, true
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
