package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// ------------------------------------------------------------------
// Keyword valence lexicon (offline, deterministic).
// Valences use the -4..+4 scale common to rule-based sentiment
// lexicons and are normalized into a compound score in [-1, 1].
// ------------------------------------------------------------------

// normAlpha is the normalization constant for x / sqrt(x^2 + alpha).
const normAlpha = 15.0

const (
	negationScalar = -0.74
	boosterIncr    = 0.293
	butBefore      = 0.5
	butAfter       = 1.5
)

var wordValence = map[string]float64{
	// market-bullish
	"bullish": 2.6, "rally": 2.1, "rallies": 2.1, "rallied": 2.1, "surge": 2.3, "surges": 2.3,
	"surged": 2.3, "soar": 2.6, "soars": 2.6, "soared": 2.6, "jump": 1.5, "jumps": 1.5,
	"jumped": 1.5, "gain": 1.6, "gains": 1.6, "gained": 1.6, "climb": 1.4, "climbs": 1.4,
	"upbeat": 1.9, "upgrade": 2.0, "upgraded": 2.0, "upgrades": 2.0, "outperform": 2.0,
	"outperforms": 2.0, "beat": 1.5, "beats": 1.5, "exceeds": 1.7, "exceeded": 1.7,
	"breakout": 1.8, "recovery": 1.6, "recovers": 1.6, "rebound": 1.6, "rebounds": 1.6,
	"growth": 1.6, "grow": 1.4, "grows": 1.4, "expansion": 1.3, "profit": 1.7, "profits": 1.7,
	"profitable": 1.9, "dividend": 1.1, "buyback": 1.3, "record": 1.1, "boom": 2.0,
	"moon": 1.8, "undervalued": 1.2, "accumulate": 1.2, "buy": 1.0, "optimistic": 2.2,
	"optimism": 2.2, "strong": 2.3, "stronger": 2.3, "robust": 2.0, "innovative": 2.1,
	// general positive
	"good": 1.9, "great": 3.1, "excellent": 3.2, "amazing": 2.8, "love": 3.2, "best": 3.2,
	"better": 1.9, "positive": 2.6, "win": 2.8, "wins": 2.8, "winning": 2.4, "success": 2.7,
	"successful": 2.8, "happy": 2.7, "confident": 2.2, "impressive": 2.5, "solid": 1.6,
	"promising": 1.7, "opportunity": 1.6, "benefit": 1.6, "improve": 1.9, "improved": 2.1,
	"improves": 1.9, "nice": 1.8, "wow": 2.8, "awesome": 3.1, "like": 1.5,

	// market-bearish
	"bearish": -2.6, "crash": -2.8, "crashes": -2.8, "crashed": -2.8, "plunge": -2.6,
	"plunges": -2.6, "plunged": -2.6, "slump": -2.2, "slumps": -2.2, "tumble": -2.1,
	"tumbles": -2.1, "tumbled": -2.1, "drop": -1.4, "drops": -1.4, "dropped": -1.4,
	"fall": -1.4, "falls": -1.4, "fell": -1.4, "decline": -1.6, "declines": -1.6,
	"declined": -1.6, "sink": -1.7, "sinks": -1.7, "slide": -1.4, "slides": -1.4,
	"downgrade": -2.0, "downgraded": -2.0, "downgrades": -2.0, "underperform": -2.0,
	"selloff": -2.3, "sell-off": -2.3, "sell": -1.0, "correction": -1.2, "recession": -2.6,
	"loss": -1.8, "losses": -1.8, "miss": -1.6, "misses": -1.6, "missed": -1.6,
	"layoffs": -2.0, "lawsuit": -1.9, "subpoena": -1.6, "investigation": -1.6, "fraud": -3.0,
	"scam": -3.1, "default": -2.2, "bankruptcy": -3.0, "bankrupt": -3.0, "overvalued": -1.2,
	"bubble": -1.4, "volatile": -1.3, "volatility": -1.1, "warning": -1.8, "warns": -1.8,
	"cut": -1.1, "cuts": -1.1, "weak": -1.9, "weaker": -1.9, "weakness": -1.9, "risk": -1.1,
	"risky": -1.4, "debt": -1.0, "halt": -1.2, "halted": -1.2, "dump": -1.6,
	// general negative
	"bad": -2.5, "worse": -2.1, "worst": -3.1, "terrible": -2.9, "awful": -2.8, "hate": -2.7,
	"negative": -2.7, "fear": -2.2, "fears": -2.2, "worried": -1.9, "worry": -1.9,
	"concern": -1.5, "concerns": -1.5, "uncertain": -1.2, "uncertainty": -1.4, "fail": -2.5,
	"fails": -2.5, "failed": -2.3, "failure": -2.6, "problem": -1.7, "problems": -1.7,
	"trouble": -1.9, "disappointing": -2.2, "disappointed": -2.1, "disaster": -3.1,
	"panic": -2.3, "angry": -2.3, "lose": -1.8, "losing": -1.8, "lost": -1.3, "pain": -2.3,
}

// Multi-word entries, matched before single tokens and consuming their words.
var phraseValence = map[string]float64{
	"record high":      2.4,
	"all-time high":    2.4,
	"all time high":    2.4,
	"beats estimates":  2.2,
	"beat estimates":   2.2,
	"price target":     0.0,
	"short squeeze":    1.6,
	"to the moon":      2.3,
	"buy the dip":      1.2,
	"record low":       -2.4,
	"all-time low":     -2.4,
	"misses estimates": -2.2,
	"profit warning":   -2.6,
	"guidance cut":     -2.3,
	"going bankrupt":   -3.1,
	"class action":     -1.8,
}

var maxPhraseWords = func() int {
	n := 1
	for p := range phraseValence {
		if w := len(strings.Fields(p)); w > n {
			n = w
		}
	}
	return n
}()

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "nor": true, "without": true, "cannot": true,
	"isn't": true, "aren't": true, "wasn't": true, "weren't": true, "don't": true,
	"doesn't": true, "didn't": true, "won't": true, "can't": true, "couldn't": true,
	"shouldn't": true, "wouldn't": true, "hardly": true, "neither": true,
}

var boosters = map[string]float64{
	"very": boosterIncr, "extremely": boosterIncr, "hugely": boosterIncr,
	"sharply": boosterIncr, "significantly": boosterIncr, "massively": boosterIncr,
	"really": boosterIncr, "strongly": boosterIncr, "incredibly": boosterIncr,
	"slightly": -boosterIncr, "somewhat": -boosterIncr, "marginally": -boosterIncr,
	"barely": -boosterIncr, "modestly": -boosterIncr,
}

// KeywordLexicon scores text against a fixed market-vocabulary lexicon.
type KeywordLexicon struct{}

// NewKeywordLexicon returns the built-in lexicon.
func NewKeywordLexicon() KeywordLexicon { return KeywordLexicon{} }

// Compound returns the normalized polarity of text in [-1, 1].
func (KeywordLexicon) Compound(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	valences := make([]float64, 0, len(tokens))
	butIdx := -1

	for i := 0; i < len(tokens); {
		if tokens[i] == "but" && butIdx < 0 {
			butIdx = len(valences)
		}

		v, width := lookup(tokens, i)
		if width == 0 {
			i++
			continue
		}
		v = applyContext(v, tokens, i)
		valences = append(valences, v)
		i += width
	}

	sum := 0.0
	for j, v := range valences {
		switch {
		case butIdx < 0:
		case j < butIdx:
			v *= butBefore
		default:
			v *= butAfter
		}
		sum += v
	}
	return normalize(sum)
}

// lookup returns the valence of the longest phrase starting at i and the
// number of tokens it spans. A width of zero means no lexicon entry.
func lookup(tokens []string, i int) (float64, int) {
	for w := maxPhraseWords; w >= 2; w-- {
		if i+w > len(tokens) {
			continue
		}
		if v, ok := phraseValence[strings.Join(tokens[i:i+w], " ")]; ok {
			return v, w
		}
	}
	if v, ok := wordValence[tokens[i]]; ok {
		return v, 1
	}
	return 0, 0
}

// applyContext adjusts a valence for boosters and negations in the three
// preceding tokens.
func applyContext(v float64, tokens []string, i int) float64 {
	if v == 0 {
		return 0
	}
	for k := 1; k <= 3 && i-k >= 0; k++ {
		if b, ok := boosters[tokens[i-k]]; ok {
			scale := b
			if k > 1 {
				scale *= 1 - 0.05*float64(k)
			}
			if v < 0 {
				scale = -scale
			}
			v += scale
		}
	}
	for k := 1; k <= 3 && i-k >= 0; k++ {
		if negators[tokens[i-k]] {
			v *= negationScalar
			break
		}
	}
	return v
}

func normalize(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	c := sum / math.Sqrt(sum*sum+normAlpha)
	return math.Max(-1, math.Min(1, c))
}

// tokenize lower-cases text and splits it into words. Apostrophes and
// inner hyphens stay part of a word; '$' cashtags lose the sigil.
func tokenize(text string) []string {
	lower := strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-')
	})
}
