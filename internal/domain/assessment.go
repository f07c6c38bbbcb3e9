package domain

import "time"

// AssessmentStatus classifies image authenticity.
type AssessmentStatus string

const (
	AssessmentVerified    AssessmentStatus = "verified"
	AssessmentSuspicious  AssessmentStatus = "suspicious"
	AssessmentManipulated AssessmentStatus = "manipulated"
)

const (
	verifiedThreshold   = 80
	suspiciousThreshold = 60
)

// AssessmentStatusFor derives the status from an authenticity score.
func AssessmentStatusFor(score int) AssessmentStatus {
	switch {
	case score >= verifiedThreshold:
		return AssessmentVerified
	case score >= suspiciousThreshold:
		return AssessmentSuspicious
	default:
		return AssessmentManipulated
	}
}

// Manipulation indicator labels.
const (
	IndicatorEdgeInconsistency = "edge_inconsistency"
	IndicatorColorJump         = "color_jump"
)

// ImageSignals is the statistical bundle computed from decoded pixels.
type ImageSignals struct {
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	Format           string   `json:"format"`
	SampledPixels    int      `json:"sampledPixels"`
	UniqueColors     int      `json:"uniqueColors"`
	ColorDiversity   float64  `json:"colorDiversity"`
	CompressionLevel float64  `json:"compressionLevel"`
	ArtifactRatio    float64  `json:"artifactRatio"`
	EdgeDensity      float64  `json:"edgeDensity"`
	ColorJumpRatio   float64  `json:"colorJumpRatio"`
	Indicators       []string `json:"indicators"`
}

// ImageAssessment is the authenticity record for an article image.
type ImageAssessment struct {
	ID                string
	ArticleID         string
	ImageURL          string
	MatchCount        int
	AuthenticityScore int
	Status            AssessmentStatus
	Signals           ImageSignals
	Reasoning         string
	Fallback          bool
	AssessedAt        time.Time
}
