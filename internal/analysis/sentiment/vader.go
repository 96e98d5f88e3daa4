package sentiment

import (
	"sync"

	"github.com/jonreiter/govader"
)

// sharedVader parses the VADER lexicon and emoji tables once. The analyzer
// only reads its dictionaries after construction, so one instance serves
// every goroutine.
var sharedVader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// VaderLexicon scores text with the VADER rule set.
type VaderLexicon struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderLexicon returns a lexicon backed by the shared VADER analyzer.
func NewVaderLexicon() *VaderLexicon {
	return &VaderLexicon{analyzer: sharedVader()}
}

// Compound returns the VADER compound polarity in [-1, 1].
func (v *VaderLexicon) Compound(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}
