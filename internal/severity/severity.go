// Package severity assigns a severity tier to complaint content using a
// deterministic lexicon-weighted sentiment score. The scoring is heuristic
// on purpose: the same text always yields the same tier, and the tier is
// explainable from the word lists below.
package severity

import "strings"

var negativeWords = []string{
	"terrible", "horrible", "worst", "disgusting", "awful", "bad", "poor",
	"unhygienic", "dirty", "unacceptable", "pathetic", "useless", "hate",
	"harassment", "ragging", "abuse", "threat", "violence", "discrimination",
	"urgent", "immediately", "emergency", "danger", "unsafe", "critical",
}

var moderateWords = []string{
	"problem", "issue", "concern", "complaint", "difficult", "inconvenient",
	"disappointed", "unsatisfied", "unfair", "lacking", "insufficient",
	"need", "should", "must", "fix", "improve", "better",
}

var positiveWords = []string{
	"good", "great", "excellent", "thank", "appreciate", "happy",
	"satisfied", "request", "suggest", "kindly", "please",
}

// Score computes the normalized sentiment score for the content, clamped
// to [-1, 1]. Each token is matched by substring against the lexicons:
// negative words weigh -1, moderate -0.3, positive +0.5. The sum is
// normalized by max(tokenCount, 10) so short texts cannot spike the score.
func Score(content string) float64 {
	tokens := strings.Fields(strings.ToLower(content))

	var score float64
	for _, token := range tokens {
		if matchesAny(token, negativeWords) {
			score -= 1
		}
		if matchesAny(token, moderateWords) {
			score -= 0.3
		}
		if matchesAny(token, positiveWords) {
			score += 0.5
		}
	}

	divisor := float64(len(tokens))
	if divisor < 10 {
		divisor = 10
	}
	normalized := score / divisor

	if normalized < -1 {
		return -1
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Classify maps content to its severity tier: score < -0.6 is critical,
// < -0.2 is medium, everything else is low.
func Classify(content string) string {
	return tierFor(Score(content))
}

func tierFor(score float64) string {
	switch {
	case score < -0.6:
		return "critical"
	case score < -0.2:
		return "medium"
	default:
		return "low"
	}
}

func matchesAny(token string, words []string) bool {
	for _, w := range words {
		if strings.Contains(token, w) {
			return true
		}
	}
	return false
}
