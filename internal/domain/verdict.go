package domain

import (
	"strings"
	"time"
)

// VerdictStatus is the outcome of claim verification.
type VerdictStatus string

const (
	VerdictTrue       VerdictStatus = "true"
	VerdictFalse      VerdictStatus = "false"
	VerdictMixed      VerdictStatus = "mixed"
	VerdictUnverified VerdictStatus = "unverified"
)

// VerdictStatuses lists every valid status in declaration order.
var VerdictStatuses = []VerdictStatus{VerdictTrue, VerdictFalse, VerdictMixed, VerdictUnverified}

// ParseVerdictStatus maps free-form backend output onto a known status.
func ParseVerdictStatus(value string) VerdictStatus {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "true", "verified", "accurate", "mostly true", "mostly_true":
		return VerdictTrue
	case "false", "fake", "inaccurate", "mostly false", "mostly_false":
		return VerdictFalse
	case "mixed", "partially true", "partly true", "misleading":
		return VerdictMixed
	default:
		return VerdictUnverified
	}
}

// Verdict captures the structured result of claim verification for an article.
type Verdict struct {
	ID             string
	ArticleID      string
	Claim          string
	Status         VerdictStatus
	Confidence     int
	Reasoning      string
	Citations      []string
	RedFlags       []string
	ContextSources []string
	Tier           Tier
	CheckedAt      time.Time
}

// ContextEntry is one piece of background material about a topic.
type ContextEntry struct {
	Source  string
	Title   string
	Summary string
	URL     string
}

// Empty reports whether the entry carries no usable content.
func (c ContextEntry) Empty() bool {
	return strings.TrimSpace(c.Summary) == "" && strings.TrimSpace(c.Title) == ""
}

// ClampScore bounds a score to the [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
