package score

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/truthguard/internal/model"
)

// Adjustment is one rule that moved the score
type Adjustment struct {
	Rule  string  `json:"rule"`
	Match string  `json:"match"`
	Delta float64 `json:"delta"`
}

// Breakdown explains how a narrative was scored
type Breakdown struct {
	// Verdict is the matched label, empty when none was found
	Verdict model.Verdict `json:"verdict,omitempty"`

	// SubScores holds the parsed 1-10 ratings keyed by name
	SubScores map[string]float64 `json:"sub_scores"`

	Adjustments []Adjustment `json:"adjustments"`

	// Raw is the unclamped sum before rounding
	Raw float64 `json:"raw"`

	// Score is the final 0-100 credibility
	Score int `json:"score"`
}

// Scorer maps a fact-check narrative onto a 0-100 credibility score.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	weights Weights
}

var subScorePatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(subScores))
	for _, s := range subScores {
		patterns[s.name] = regexp.MustCompile(regexp.QuoteMeta(s.label) + `:\s*(\d+(\.\d+)?)`)
	}
	return patterns
}()

// NewScorer creates a new scorer with the default weights
func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// NewScorerWithWeights creates a scorer with custom weights
func NewScorerWithWeights(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns the credibility for the narrative
func (s *Scorer) Score(text string) int {
	return s.Breakdown(text).Score
}

// Breakdown scores the narrative and records every applied rule
func (s *Scorer) Breakdown(text string) Breakdown {
	lower := strings.ToLower(text)
	b := Breakdown{
		SubScores:   make(map[string]float64),
		Adjustments: []Adjustment{},
	}
	score := Baseline

	// 1. Verdict
	verdictValue := noVerdictValue
	for _, v := range verdictValues {
		if strings.Contains(lower, v.verdict.Phrase()) {
			verdictValue = v.value
			b.Verdict = v.verdict
			break
		}
	}
	delta := (verdictValue - 50) * s.weights.Verdict
	score += delta
	match := "none"
	if b.Verdict != "" {
		match = b.Verdict.Phrase()
	}
	b.Adjustments = append(b.Adjustments, Adjustment{Rule: "verdict", Match: match, Delta: delta})

	// 2. Labeled sub-scores
	for _, sub := range subScores {
		m := subScorePatterns[sub.name].FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		b.SubScores[sub.name] = value
		delta := (value*10 - 50) * sub.weight(s.weights)
		score += delta
		b.Adjustments = append(b.Adjustments, Adjustment{
			Rule:  sub.name,
			Match: fmt.Sprintf("%s: %s", sub.label, m[1]),
			Delta: delta,
		})
	}

	// 3. Keyword groups, each term counted once if present
	for _, group := range termGroups {
		for _, term := range group.Terms {
			if strings.Contains(lower, term) {
				score += group.Delta
				b.Adjustments = append(b.Adjustments, Adjustment{Rule: group.Name, Match: term, Delta: group.Delta})
			}
		}
	}

	// 4. Compound rules, applied at most once each
	for _, rule := range compoundRules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				score += rule.Delta
				b.Adjustments = append(b.Adjustments, Adjustment{Rule: rule.Name, Match: phrase, Delta: rule.Delta})
				break
			}
		}
	}

	b.Raw = score
	b.Score = clampRound(score)
	return b
}

// clampRound bounds the score to [0,100] and rounds half up
func clampRound(score float64) int {
	score = math.Max(0, math.Min(100, score))
	return int(math.Floor(score + 0.5))
}
