// Package match implements the similarity scorer and the match discovery
// engine that pairs lost reports with found reports.
package match

import (
	"strings"
	"time"

	"github.com/retracehq/retrace/internal/models"
)

// Weights are the per-signal weights of the similarity score. They sum to
// 1.0 with the defaults; the score is the weighted sum of the signals.
type Weights struct {
	Category float64 `yaml:"category"`
	City     float64 `yaml:"city"`
	Area     float64 `yaml:"area"`
	Keywords float64 `yaml:"keywords"`
	Time     float64 `yaml:"time"`
}

// DefaultWeights returns the production weight set.
func DefaultWeights() Weights {
	return Weights{
		Category: 0.40,
		City:     0.20,
		Area:     0.10,
		Keywords: 0.20,
		Time:     0.10,
	}
}

// Scorer computes similarity between two item reports.
type Scorer struct {
	weights Weights
	aliases *AliasProvider
}

// NewScorer creates a scorer with the given weights and alias provider.
func NewScorer(w Weights, aliases *AliasProvider) *Scorer {
	return &Scorer{weights: w, aliases: aliases}
}

// Score returns a similarity in [0, 1] for two items. It is pure and
// symmetric: Score(a, b) == Score(b, a). Missing fields contribute zero,
// never an error.
func (s *Scorer) Score(a, b *models.Item) float64 {
	idx := s.aliases.Current()
	var score float64

	// Category: alias-group membership, with the title accepted in place of
	// a category token to handle loosely categorized posts.
	if idx.Related(a.Category, b.Category) ||
		idx.Related(a.Title, b.Category) ||
		idx.Related(a.Category, b.Title) {
		score += s.weights.Category
	}

	// City: exact match, case-insensitive, both sides present.
	cityA := normalizeToken(a.Location.City)
	cityB := normalizeToken(b.Location.City)
	if cityA != "" && cityA == cityB {
		score += s.weights.City
	}

	// Area: substring either way ("Andheri" vs "Andheri West").
	areaA := normalizeToken(a.Location.Area)
	areaB := normalizeToken(b.Location.Area)
	if areaA != "" && areaB != "" &&
		(strings.Contains(areaA, areaB) || strings.Contains(areaB, areaA)) {
		score += s.weights.Area
	}

	score += s.keywordScore(a, b)
	score += s.timeScore(a.CreatedAt, b.CreatedAt)

	// Guard against float drift pushing a full-signal score past 1.
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// keywordScore rewards overlap between the two keyword sets. The match
// count is taken as the larger of the two directions and normalized by the
// larger set size, keeping the signal symmetric. The x2 multiplier rewards
// partial overlap more generously than a strict ratio; credit is capped at
// the full keyword weight.
func (s *Scorer) keywordScore(a, b *models.Item) float64 {
	kwA := Keywords(a)
	kwB := Keywords(b)
	if len(kwA) == 0 || len(kwB) == 0 {
		return 0
	}

	matches := countMatches(kwA, kwB)
	if rev := countMatches(kwB, kwA); rev > matches {
		matches = rev
	}

	denom := len(kwA)
	if len(kwB) > denom {
		denom = len(kwB)
	}
	ratio := float64(matches) / float64(denom)

	credit := ratio * s.weights.Keywords * 2
	if credit > s.weights.Keywords {
		credit = s.weights.Keywords
	}
	return credit
}

func countMatches(from, to []string) int {
	n := 0
	for _, w := range from {
		for _, other := range to {
			if keywordsMatch(w, other) {
				n++
				break
			}
		}
	}
	return n
}

// timeScore gives full credit within a week, half within a month.
func (s *Scorer) timeScore(a, b time.Time) float64 {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	days := diff.Hours() / 24
	switch {
	case days <= 7:
		return s.weights.Time
	case days <= 30:
		return s.weights.Time * 0.5
	default:
		return 0
	}
}
