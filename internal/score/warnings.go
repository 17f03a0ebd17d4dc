package score

import (
	"regexp"
	"strings"
)

var (
	issuesHeader = regexp.MustCompile(`(?i)potential issues:`)

	lowRatingPatterns = func() []*regexp.Regexp {
		patterns := make([]*regexp.Regexp, len(lowRatings))
		for i, r := range lowRatings {
			patterns[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(r.label) + `:\s*([1-4])(/|\s*out of\s*)10`)
		}
		return patterns
	}()
)

// ExtractWarnings collects the POTENTIAL ISSUES bullets followed by canned
// messages for low-rated sub-scores. Order is preserved, duplicates are
// dropped, and the result is never nil.
func ExtractWarnings(text string) []string {
	warnings := make([]string, 0)
	seen := make(map[string]bool)
	add := func(w string) {
		if w == "" || seen[w] {
			return
		}
		seen[w] = true
		warnings = append(warnings, w)
	}

	for _, bullet := range issueBullets(text) {
		add(bullet)
	}

	for i, pattern := range lowRatingPatterns {
		if pattern.MatchString(text) {
			add(lowRatings[i].message)
		}
	}

	return warnings
}

// issueBullets returns the dash bullets of the first POTENTIAL ISSUES
// section, which ends at the next blank line or end of text
func issueBullets(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	loc := issuesHeader.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	var bullets []string
	for i, line := range strings.Split(text[loc[1]:], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// The rest of the header line may be empty; that is not the terminator
			if i == 0 {
				continue
			}
			break
		}
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		bullets = append(bullets, strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
	}
	return bullets
}
