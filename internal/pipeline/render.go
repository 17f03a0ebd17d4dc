package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/truthguard/internal/model"
	"github.com/ppiankov/truthguard/internal/score"
)

// Renderer writes analysis results for the CLI
type Renderer struct {
	verbose bool
}

// NewRenderer creates a new renderer. Verbose text output includes the scoring breakdown.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// RenderJSON writes the result exactly as the HTTP API returns it
func (r *Renderer) RenderJSON(w io.Writer, result *model.AnalysisResult) error {
	result.NormalizeWarnings()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// RenderText writes a human-readable summary. breakdown may be nil.
func (r *Renderer) RenderText(w io.Writer, result *model.AnalysisResult, breakdown *score.Breakdown) error {
	var b strings.Builder

	b.WriteString("═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(&b, "  Credibility: %d%% (%s)\n", result.Credibility, Band(result.Credibility))
	b.WriteString("═══════════════════════════════════════════════════════════\n\n")

	b.WriteString(strings.TrimSpace(result.Explanation))
	b.WriteString("\n\n")

	if len(result.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "  ⚠ %s\n", warning)
		}
		b.WriteString("\n")
	}

	if r.verbose && breakdown != nil {
		b.WriteString("Score breakdown:\n")
		fmt.Fprintf(&b, "  %-18s %-28s %+7.2f\n", "baseline", "", score.Baseline)
		for _, adj := range breakdown.Adjustments {
			fmt.Fprintf(&b, "  %-18s %-28s %+7.2f\n", adj.Rule, adj.Match, adj.Delta)
		}
		fmt.Fprintf(&b, "  %-18s %-28s %7.2f\n", "raw", "", breakdown.Raw)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Band maps a credibility score to the meter color band shown next to it
func Band(credibility int) string {
	switch {
	case credibility > 70:
		return "high"
	case credibility > 40:
		return "medium"
	default:
		return "low"
	}
}
