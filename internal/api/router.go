// Package api exposes the verification pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"NewsVerifier/internal/domain"
	"NewsVerifier/internal/logging"
	"NewsVerifier/internal/ports"
)

// Ingestor runs the ingestion pipeline for one sector.
type Ingestor interface {
	Ingest(ctx context.Context, sector string) ([]domain.Article, error)
}

// Verifier checks free-text claims and stored articles.
type Verifier interface {
	Verify(ctx context.Context, claim string) domain.Verdict
	VerifyArticle(ctx context.Context, article domain.Article) domain.Verdict
}

// TimelineBuilder assembles topic timelines.
type TimelineBuilder interface {
	Build(ctx context.Context, topic string) domain.Timeline
}

// Summarizer narrates an article in light of its verdict.
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article, verdict domain.Verdict) domain.Summary
}

// Deps wires the handlers to the application services.
type Deps struct {
	Ingestor   Ingestor
	Verifier   Verifier
	Images     ports.ImageAssessor
	Timeline   TimelineBuilder
	Summarizer Summarizer
	Articles   ports.ArticleRepository
	Evidence   ports.EvidenceRepository
	Logger     *slog.Logger
}

type handlers struct {
	Deps
	logger *slog.Logger
}

const maxListLimit = 200

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(deps Deps) *gin.Engine {
	h := &handlers{Deps: deps, logger: logging.OrDiscard(deps.Logger)}

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", h.health)
	api.POST("/ingest/:sector", h.ingest)
	api.POST("/verify", h.verify)
	api.POST("/assess", h.assess)
	api.GET("/timeline", h.timeline)
	api.GET("/articles", h.listArticles)
	api.GET("/articles/summary", h.articleSummary)
	return r
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) ingest(c *gin.Context) {
	if h.Ingestor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion is not configured"})
		return
	}

	sector := strings.TrimSpace(c.Param("sector"))
	articles, err := h.Ingestor.Ingest(c.Request.Context(), sector)
	if err != nil {
		h.logger.Error("ingest request failed", "sector", sector, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sector":   sector,
		"count":    len(articles),
		"articles": toArticleResponses(articles),
	})
}

type verifyRequest struct {
	Claim string `json:"claim" binding:"required"`
}

func (h *handlers) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Claim) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "claim is required"})
		return
	}
	if h.Verifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "verification is not configured"})
		return
	}

	c.JSON(http.StatusOK, toVerdictResponse(h.Verifier.Verify(c.Request.Context(), req.Claim)))
}

type assessRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

func (h *handlers) assess(c *gin.Context) {
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageURL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl is required"})
		return
	}
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image analysis is not configured"})
		return
	}

	c.JSON(http.StatusOK, toAssessmentResponse(h.Images.Assess(c.Request.Context(), req.ImageURL)))
}

func (h *handlers) timeline(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
		return
	}
	if h.Timeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timeline is not configured"})
		return
	}

	c.JSON(http.StatusOK, toTimelineResponse(h.Timeline.Build(c.Request.Context(), topic)))
}

func (h *handlers) listArticles(c *gin.Context) {
	if h.Articles == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage is not configured"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > maxListLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
		return
	}

	articles, err := h.Articles.ListArticles(c.Request.Context(), c.Query("sector"), limit)
	if err != nil {
		h.logger.Error("list articles failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": toArticleResponses(articles)})
}

// articleSummary narrates a stored article, verifying it first when no verdict
// has been recorded yet.
func (h *handlers) articleSummary(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	if h.Articles == nil || h.Summarizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "summaries are not configured"})
		return
	}

	ctx := c.Request.Context()
	article, err := h.Articles.GetArticleByURL(ctx, url)
	if errors.Is(err, ports.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	if err != nil {
		h.logger.Error("load article failed", "url", url, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load article"})
		return
	}

	verdict, err := h.loadVerdict(ctx, article)
	if err != nil {
		h.logger.Error("load verdict failed", "article", article.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load verdict"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"article": toArticleResponse(article),
		"verdict": toVerdictResponse(verdict),
		"summary": h.Summarizer.Summarize(ctx, article, verdict),
	})
}

func (h *handlers) loadVerdict(ctx context.Context, article domain.Article) (domain.Verdict, error) {
	if h.Evidence != nil {
		verdict, err := h.Evidence.GetVerdict(ctx, article.ID)
		if err == nil {
			return verdict, nil
		}
		if !errors.Is(err, ports.ErrNotFound) {
			return domain.Verdict{}, err
		}
	}
	if h.Verifier == nil {
		return domain.Verdict{}, errors.New("verifier is not configured")
	}

	verdict := h.Verifier.VerifyArticle(ctx, article)
	if h.Evidence != nil {
		if err := h.Evidence.SaveVerdict(ctx, verdict); err != nil {
			h.logger.Warn("persist on-demand verdict failed", "article", article.ID, "error", err)
		}
	}
	return verdict, nil
}
