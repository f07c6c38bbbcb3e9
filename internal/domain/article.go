package domain

import "time"

// Article is a core entity describing a stored news item. URL is the dedup key.
type Article struct {
	ID          string
	URL         string
	Title       string
	Body        string
	ImageURL    string
	Sector      string
	Source      string
	PublishedAt time.Time
	IngestedAt  time.Time
}

// HasImage reports whether the article references an image to assess.
func (a Article) HasImage() bool {
	return a.ImageURL != ""
}

// RawArticle is a candidate returned by an article provider before persistence.
type RawArticle struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Source      string
	PublishedAt *time.Time
}

// FetchResult carries provider output together with the tier that produced it.
type FetchResult struct {
	Articles []RawArticle
	Source   string
}

// Tier marks which generator variant produced a piece of content.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierSynthetic Tier = "synthetic"
)
