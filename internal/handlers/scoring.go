package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/m-karthika14/mindmirrorai/internal/cache"
	"github.com/m-karthika14/mindmirrorai/internal/metrics"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"github.com/m-karthika14/mindmirrorai/internal/observability"
	"github.com/m-karthika14/mindmirrorai/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchOptions bound the batch scoring endpoint.
type BatchOptions struct {
	Limit   int
	Workers int
}

type ScoringHandler struct {
	log    *zap.Logger
	scorer *metrics.Scorer
	cache  cache.ReportCache
	batch  BatchOptions
	now    func() time.Time
}

func NewScoringHandler(log *zap.Logger, scorer *metrics.Scorer, reportCache cache.ReportCache, batch BatchOptions) *ScoringHandler {
	if batch.Workers < 1 {
		batch.Workers = 1
	}
	return &ScoringHandler{
		log:    log,
		scorer: scorer,
		cache:  reportCache,
		batch:  batch,
		now:    time.Now,
	}
}

// Validate checks a session without scoring or storing it.
func (h *ScoringHandler) Validate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if _, errs := metrics.Validate(raw); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "errors": errs})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// Score validates, scores and stores one session and responds with the
// assembled report.
func (h *ScoringHandler) Score(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	report, errs := h.score(c.Request.Context(), raw)
	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}

	if err := h.store(c.Request.Context(), raw, report); err != nil {
		h.log.Error("Failed to store scored session", zap.Error(err), zap.String("session_id", report.SessionID))
		// The computed report is still returned so the client does not lose it.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to store report", "report": report})
		return
	}

	h.log.Info("Session scored",
		zap.String("report_id", report.ReportID),
		zap.String("game_type", string(report.GameType)),
		zap.Strings("fallbacks", report.Fallbacks),
	)
	c.JSON(http.StatusCreated, report)
}

// BatchResult is one entry of a batch scoring response, in request order.
type BatchResult struct {
	Index  int                      `json:"index"`
	Report *models.Report           `json:"report,omitempty"`
	Errors metrics.ValidationErrors `json:"errors,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// ScoreBatch scores a JSON array of sessions with a bounded worker pool. One
// invalid session does not affect the others.
func (h *ScoringHandler) ScoreBatch(c *gin.Context) {
	var sessions []json.RawMessage
	if err := c.ShouldBindJSON(&sessions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a JSON array of sessions"})
		return
	}
	if len(sessions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Batch is empty"})
		return
	}
	if h.batch.Limit > 0 && len(sessions) > h.batch.Limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Batch exceeds the maximum number of sessions"})
		return
	}

	ctx := c.Request.Context()
	results := make([]BatchResult, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.batch.Workers)

	for i, raw := range sessions {
		i, raw := i, raw
		g.Go(func() error {
			result := BatchResult{Index: i}
			report, errs := h.score(gctx, raw)
			switch {
			case len(errs) > 0:
				result.Errors = errs
			default:
				if err := h.store(gctx, raw, report); err != nil {
					h.log.Error("Failed to store batch session", zap.Int("index", i), zap.Error(err))
					result.Error = "Failed to store report"
				}
				result.Report = report
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	c.JSON(http.StatusOK, results)
}

func (h *ScoringHandler) score(ctx context.Context, raw []byte) (*models.Report, metrics.ValidationErrors) {
	_, span := observability.Tracer().Start(ctx, "scoring.score")
	defer span.End()

	report, errs := h.scorer.Score(raw, h.now())
	if len(errs) > 0 {
		span.SetAttributes(attribute.Int("validation.errors", len(errs)))
		span.SetStatus(codes.Error, "invalid session")
		return nil, errs
	}
	span.SetAttributes(
		attribute.String("session.id", report.SessionID),
		attribute.String("game.type", string(report.GameType)),
		attribute.String("risk.highest", string(models.HighestLevel(report.RiskFlags))),
	)
	return report, nil
}

func (h *ScoringHandler) store(ctx context.Context, raw []byte, report *models.Report) error {
	if _, err := repository.SaveScoredSession(ctx, raw, report); err != nil {
		return err
	}
	h.cache.Set(ctx, &models.ReportView{Report: report})
	return nil
}
