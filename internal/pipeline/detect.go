package pipeline

import "strings"

type DetectResult struct {
	IsImport bool
	Score    float64
	Reason   string
}

var detectKeywords = []string{"import", "application", "book of business", "policies", "clients", "leads", "submission", "spreadsheet"}

var detectHeaderWords = []string{"carrier", "premium", "policy", "insured", "product", "dob", "phone"}

// DetectImportPayload scores whether an intake message carries importable
// application data: keyword hits, tabular attachments, and recognizable
// column headers in the body.
func DetectImportPayload(subject, text string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) {
			score += 0.1
		}
	}

	headerHits := 0
	for _, w := range detectHeaderWords {
		if strings.Contains(text, w) {
			headerHits++
		}
	}
	if headerHits >= 3 {
		score += 0.35
	} else if headerHits == 2 {
		score += 0.2
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".csv") || strings.HasSuffix(ln, ".tsv") || strings.HasSuffix(ln, ".txt") || strings.HasSuffix(ln, ".xlsx") {
			score += 0.35
			break
		}
	}

	if looksDelimited(text) {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}

	isImport := score >= 0.45
	reason := "rules_negative"
	if isImport {
		reason = "rules_positive"
	}

	return DetectResult{IsImport: isImport, Score: score, Reason: reason}
}

// looksDelimited checks for two consecutive non-empty lines sharing the same
// non-zero delimiter count.
func looksDelimited(text string) bool {
	lines := make([]string, 0, 4)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
			if len(lines) == 2 {
				break
			}
		}
	}
	if len(lines) < 2 {
		return false
	}
	for _, delim := range []string{",", "\t", ";", "|"} {
		a := strings.Count(lines[0], delim)
		if a > 0 && a == strings.Count(lines[1], delim) {
			return true
		}
	}
	return false
}
