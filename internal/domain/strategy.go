package domain

import (
	"strings"
	"time"
)

// Priority ranks how urgently a strategy should be acted upon.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority maps backend output onto a known priority, defaulting to medium.
func ParsePriority(value string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(value))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	case PriorityCritical:
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// Strategy is the recommended response to a verdict.
type Strategy struct {
	ID        string
	ArticleID string
	Summary   string
	Actions   []string
	Priority  Priority
	Tier      Tier
	CreatedAt time.Time
}

// TimelineEntry is a loose date/event pair inside a summary.
type TimelineEntry struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// Summary is the structured narrative produced for an article and its verdict.
type Summary struct {
	TLDR            string          `json:"tldr"`
	KeyPoints       []string        `json:"keyPoints"`
	Timeline        []TimelineEntry `json:"timeline"`
	Context         string          `json:"context"`
	Implications    string          `json:"implications"`
	TrustScore      int             `json:"trustScore"`
	Recommendations []string        `json:"recommendations"`
	Priority        Priority        `json:"priority"`
	RelatedTopics   []string        `json:"relatedTopics"`
	Confidence      int             `json:"confidence"`
	Tier            Tier            `json:"tier"`
}
