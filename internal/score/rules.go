package score

import "github.com/ppiankov/truthguard/internal/model"

// Baseline is the neutral starting score before any adjustment
const Baseline = 50.0

// Weights scale each parsed signal's deviation from neutral
type Weights struct {
	Verdict       float64
	Confidence    float64
	SourceQuality float64
	DataAccuracy  float64
	Context       float64
}

var defaultWeights = Weights{
	Verdict:       0.35,
	Confidence:    0.15,
	SourceQuality: 0.20,
	DataAccuracy:  0.20,
	Context:       0.10,
}

// DefaultWeights returns a copy of the built-in weights
func DefaultWeights() Weights {
	return defaultWeights
}

type verdictValue struct {
	verdict model.Verdict
	value   float64
}

// verdictValues is checked in order; the first phrase found wins.
// "verified true" precedes "verified false" so a narrative naming both
// scores as true.
var verdictValues = []verdictValue{
	{model.VerdictVerifiedTrue, 100},
	{model.VerdictLikelyTrue, 75},
	{model.VerdictUnverifiable, 25},
	{model.VerdictLikelyFalse, 15},
	{model.VerdictVerifiedFalse, 0},
}

// noVerdictValue applies when no verdict phrase appears at all
const noVerdictValue = 35.0

// subScore names one labeled 1-10 rating in the narrative
type subScore struct {
	name   string
	label  string
	weight func(Weights) float64
}

var subScores = []subScore{
	{"confidence", "confidence", func(w Weights) float64 { return w.Confidence }},
	{"source_quality", "source quality", func(w Weights) float64 { return w.SourceQuality }},
	{"data_accuracy", "data accuracy", func(w Weights) float64 { return w.DataAccuracy }},
	{"context", "context completeness", func(w Weights) float64 { return w.Context }},
}

// termGroup applies Delta once per term present in the narrative
type termGroup struct {
	Name  string
	Delta float64
	Terms []string
}

var termGroups = []termGroup{
	{
		Name:  "controversial",
		Delta: -10,
		Terms: []string{
			"controversial",
			"disputed",
			"debated",
			"political",
			"contested",
			"complex situation",
			"sensitive topic",
			"ongoing debate",
		},
	},
	{
		Name:  "positive",
		Delta: 5,
		Terms: []string{
			"verified",
			"confirmed",
			"proven",
			"official source",
			"direct evidence",
			"reliable",
			"authoritative",
			"expert",
			"documented",
		},
	},
	{
		Name:  "negative",
		Delta: -8,
		Terms: []string{
			"misleading",
			"incorrect",
			"false claim",
			"no evidence",
			"contradicted",
			"propaganda",
			"biased",
			"unsubstantiated",
		},
	},
	{
		Name:  "uncertainty",
		Delta: -5,
		Terms: []string{
			"possibly",
			"unclear",
			"insufficient data",
			"conflicting",
			"ambiguous",
			"uncertain",
		},
	},
}

// compoundRule applies Delta once if any of its phrases is present
type compoundRule struct {
	Name    string
	Delta   float64
	Phrases []string
}

var compoundRules = []compoundRule{
	{
		Name:    "strong_evidence",
		Delta:   10,
		Phrases: []string{"multiple verified sources", "extensively documented", "clear evidence"},
	},
	{
		Name:    "contested_topic",
		Delta:   -15,
		Phrases: []string{"highly contested", "politically sensitive", "no international consensus"},
	},
}

// lowRating is one canned warning for a sub-score rated 1-4 out of 10
type lowRating struct {
	label   string
	message string
}

var lowRatings = []lowRating{
	{"source quality", "Low quality sources detected"},
	{"data accuracy", "Poor data accuracy detected"},
	{"context completeness", "Incomplete context"},
	{"confidence", "Low confidence in analysis"},
}
