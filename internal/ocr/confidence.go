package ocr

import (
	"regexp"
	"strings"
)

var (
	reEmailish = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	rePhoneish = regexp.MustCompile(`\+?[\d(][\d ().-]{6,}\d`)
	reWebish   = regexp.MustCompile(`\b(?:https?://|www\.)[a-z0-9.-]+\.[a-z]{2,}`)
)

// heuristicConfidence scores decoded text by how card-like it looks:
// each of e-mail, phone and website shapes adds to a base score.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if strings.TrimSpace(txtL) == "" {
		return 0
	}
	if reEmailish.MatchString(txtL) {
		score += 0.25
	}
	if rePhoneish.MatchString(txtL) {
		score += 0.2
	}
	if reWebish.MatchString(txtL) {
		score += 0.15
	}
	if lines := strings.Count(strings.TrimSpace(txtL), "\n") + 1; lines >= 3 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
