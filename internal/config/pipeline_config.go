package config

import "time"

const (
	// Trust score
	DefaultTrustScore = 50
	MinTrustScore     = 0
	MaxTrustScore     = 100

	// Dampening: low scores lose less, high scores gain less.
	LowScoreThreshold  = 20
	LowScoreDampening  = 0.5
	HighScoreThreshold = 80
	HighScoreDampening = 0.7

	// Screening
	MinContentLength = 20
	MinDistinctChars = 5
	RateLimitMax     = 5
	SubmissionWindow = 24 * time.Hour

	// Task queue
	TaskMaxAttempts = 3

	// Trust history page size returned to submitters.
	TrustHistoryLimit = 10
)

// SpamKeywords is the deny-list of low-effort tokens. Matching is
// case-insensitive substring over the whole content.
var SpamKeywords = []string{
	"test", "testing", "asdf", "qwerty", "xyz", "abc123",
	"fake", "trial", "demo", "sample", "aaaaa", "bbbbb",
}

// TrustActionDeltas is the closed set of trust-affecting actions and their
// base deltas. Callers never supply raw deltas; extend this table instead.
var TrustActionDeltas = map[string]int{
	"complaint_resolved_positive": 5,
	"complaint_validated":         5,
	"repeated_valid":              2,
	"spam_detected":               -10,
	"false_complaint":             -15,
	"low_rating":                  -5,
	"high_rating":                 3,
}
