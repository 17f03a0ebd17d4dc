package model

import "strings"

// MaxContentChars is the number of characters of submitted content that are
// forwarded to the LLM
const MaxContentChars = 1000

// FallbackExplanation is used when the LLM returns no usable text
const FallbackExplanation = "Analysis failed"

// AnalysisRequest is the body accepted by POST /api/analyze
type AnalysisRequest struct {
	Content string `json:"content"`
}

// AnalysisResult is the credibility verdict returned to clients
type AnalysisResult struct {
	Credibility int      `json:"credibility"` // 0-100
	Explanation string   `json:"explanation"` // Raw LLM narrative
	Warnings    []string `json:"warnings"`    // Deduplicated, insertion ordered
}

// ErrorResponse is the body returned on 4xx/5xx
type ErrorResponse struct {
	Error string `json:"error"`
}

// Verdict is one of the categorical labels the LLM is asked to emit
type Verdict string

const (
	VerdictVerifiedTrue  Verdict = "VERIFIED TRUE"
	VerdictLikelyTrue    Verdict = "LIKELY TRUE"
	VerdictUnverifiable  Verdict = "UNVERIFIABLE"
	VerdictLikelyFalse   Verdict = "LIKELY FALSE"
	VerdictVerifiedFalse Verdict = "VERIFIED FALSE"
)

// AllVerdicts returns the verdict labels from most to least credible
func AllVerdicts() []Verdict {
	return []Verdict{
		VerdictVerifiedTrue,
		VerdictLikelyTrue,
		VerdictUnverifiable,
		VerdictLikelyFalse,
		VerdictVerifiedFalse,
	}
}

// Phrase returns the lowercase form used for matching LLM output
func (v Verdict) Phrase() string {
	return strings.ToLower(string(v))
}

// TruncateContent trims the content and keeps at most MaxContentChars characters
func TruncateContent(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= MaxContentChars {
		return content
	}
	return string(runes[:MaxContentChars])
}

// NormalizeWarnings guarantees a non-nil slice so JSON renders [] instead of null
func (r *AnalysisResult) NormalizeWarnings() {
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
}
