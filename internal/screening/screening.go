// Package screening implements the gate every submission passes before it
// is admitted: keyword, duplicate-content, and submission-rate checks.
package screening

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"speakup/backend/internal/config"
)

// Store is the slice of storage the gate needs: time-windowed queries over
// the submitter's own durable history.
type Store interface {
	CountRecentComplaints(userID string, since time.Time) (int64, error)
	HasRecentDuplicate(userID, content string, since time.Time) (bool, error)
}

// Verdict is the gate's decision. Every triggered reason is reported; the
// checks are independent and never short-circuit.
type Verdict struct {
	IsSpam  bool     `json:"is_spam"`
	Reasons []string `json:"reasons"`
}

type Gate struct {
	Store Store
}

func NewGate(store Store) *Gate {
	return &Gate{Store: store}
}

// Screen evaluates all checks against the content and the submitter's
// recent history. Storage failures on the history checks fail open for
// that check only, so a flaky store degrades screening instead of blocking
// intake.
func (g *Gate) Screen(content, submitterID string) Verdict {
	var reasons []string

	reasons = append(reasons, CheckContent(content)...)

	since := time.Now().Add(-config.SubmissionWindow)

	duplicate, err := g.Store.HasRecentDuplicate(submitterID, content, since)
	if err != nil {
		log.Printf("WARNING: Duplicate check failed for user %s: %v", submitterID, err)
	} else if duplicate {
		reasons = append(reasons, "Duplicate complaint detected within 24 hours")
	}

	count, err := g.Store.CountRecentComplaints(submitterID, since)
	if err != nil {
		log.Printf("WARNING: Rate check failed for user %s: %v", submitterID, err)
	} else if count >= config.RateLimitMax {
		reasons = append(reasons, fmt.Sprintf("Too many complaints in 24 hours (%d/%d limit)", count, config.RateLimitMax))
	}

	return Verdict{IsSpam: len(reasons) > 0, Reasons: reasons}
}

// CheckContent runs the content-only checks: deny-list keywords, minimum
// length, and a distinct-character floor against repetitive filler.
func CheckContent(content string) []string {
	var reasons []string

	lower := strings.ToLower(content)

	var found []string
	for _, keyword := range config.SpamKeywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	if len(found) > 0 {
		reasons = append(reasons, "Spam keywords detected: "+strings.Join(found, ", "))
	}

	if utf8.RuneCountInString(content) < config.MinContentLength {
		reasons = append(reasons, fmt.Sprintf("Content too short (minimum %d characters)", config.MinContentLength))
	}

	distinct := make(map[rune]struct{})
	for _, r := range lower {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		distinct[r] = struct{}{}
	}
	if len(distinct) < config.MinDistinctChars {
		reasons = append(reasons, "Repetitive content detected")
	}

	return reasons
}
