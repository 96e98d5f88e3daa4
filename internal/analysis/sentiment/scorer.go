// Package sentiment turns free text into rounded compound scores and maps
// scores onto display labels.
package sentiment

import (
	"strings"

	"github.com/seenimoa/tickerpulse/pkg/models"
	"github.com/seenimoa/tickerpulse/pkg/utils"
)

// Label thresholds. They are symmetric so that exactly one label applies.
const (
	PositiveThreshold = 0.3
	NegativeThreshold = -0.3
)

// Lexicon is any rule-based scorer that returns a compound polarity in [-1, 1].
type Lexicon interface {
	Compound(text string) float64
}

// Scorer wraps a Lexicon with neutral handling for empty input and
// two-decimal rounding.
type Scorer struct {
	lex Lexicon
}

// NewScorer returns a Scorer backed by lex. A nil lex selects VADER.
func NewScorer(lex Lexicon) *Scorer {
	if lex == nil {
		lex = NewVaderLexicon()
	}
	return &Scorer{lex: lex}
}

// Score returns the rounded compound score for text. Blank text scores 0
// without consulting the lexicon.
func (s *Scorer) Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return utils.Round2(s.lex.Compound(text))
}

// ScoreAny scores v if it is a string (or *string) and returns 0 for
// anything else, including nil.
func (s *Scorer) ScoreAny(v any) float64 {
	switch t := v.(type) {
	case string:
		return s.Score(t)
	case *string:
		if t == nil {
			return 0
		}
		return s.Score(*t)
	default:
		return 0
	}
}

// Classify maps a score to Positive (>= 0.3), Negative (<= -0.3) or Neutral.
func Classify(score float64) models.SentimentLabel {
	switch {
	case score >= PositiveThreshold:
		return models.Positive
	case score <= NegativeThreshold:
		return models.Negative
	default:
		return models.Neutral
	}
}
