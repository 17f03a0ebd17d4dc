package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/truthguard/internal/model"
)

// responseFormat is the exact labeled-section layout the scorer parses
func responseFormat() string {
	verdicts := make([]string, 0, len(model.AllVerdicts()))
	for _, v := range model.AllVerdicts() {
		verdicts = append(verdicts, string(v))
	}

	return fmt.Sprintf(`Follow this EXACT format in your response:

VERDICT: [Choose ONE: %s]

CONFIDENCE: [Rate 1-10]

EVIDENCE:
- Primary Source: [Cite specific evidence]
- Supporting Facts: [List 1-2 corroborating details]

CREDIBILITY FACTORS:
1. Source Quality: [Rate 1-10]
2. Data Accuracy: [Rate 1-10]
3. Context Completeness: [Rate 1-10]

POTENTIAL ISSUES:
- [List critical concerns]
- [List secondary concerns if any]

ANALYSIS SUMMARY:
[2-3 sentences maximum]`, strings.Join(verdicts, " / "))
}

// BuildSystemPrompt constructs the fact-checker instruction
func BuildSystemPrompt() string {
	return "You are an expert fact-checker and credibility analyst. Do not use Markdown.\n" + responseFormat()
}

// BuildUserPrompt embeds the content and repeats the format so short-context
// models still see it next to the text
func BuildUserPrompt(content string) string {
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n\nLook up relevant information about the statement above and analyze it based on what you find. ")
	b.WriteString("You are an expert fact-checker and credibility analyst. Do not use Markdown.\n")
	b.WriteString(responseFormat())
	return b.String()
}
