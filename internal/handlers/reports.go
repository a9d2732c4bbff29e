package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/m-karthika14/mindmirrorai/internal/cache"
	"github.com/m-karthika14/mindmirrorai/internal/export"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"github.com/m-karthika14/mindmirrorai/internal/narrative"
	"github.com/m-karthika14/mindmirrorai/internal/repository"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportsHandler struct {
	log      *zap.Logger
	cache    cache.ReportCache
	narrator *narrative.Narrator
}

func NewReportsHandler(log *zap.Logger, reportCache cache.ReportCache, narrator *narrative.Narrator) *ReportsHandler {
	return &ReportsHandler{log: log, cache: reportCache, narrator: narrator}
}

// ReportSummary is one row of a user's report listing.
type ReportSummary struct {
	ReportID        string           `json:"reportId"`
	SessionID       string           `json:"sessionId"`
	GameType        models.GameType  `json:"gameType"`
	HighestRisk     models.RiskLevel `json:"highestRisk"`
	NarrativeSource string           `json:"narrativeSource,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Get returns a report with its narrative fields, from the cache when possible.
func (h *ReportsHandler) Get(c *gin.Context) {
	view, err := h.loadView(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLoadError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// List returns a user's reports newest first, optionally for one game type.
func (h *ReportsHandler) List(c *gin.Context) {
	gameType, ok := gameTypeQuery(c)
	if !ok {
		return
	}
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, err := repository.ListReports(c.Request.Context(), c.Param("userId"), gameType, limit)
	if err != nil {
		h.log.Error("Failed to list reports", zap.Error(err), zap.String("user_id", c.Param("userId")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}

	summaries := make([]ReportSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, ReportSummary{
			ReportID:        r.ReportID,
			SessionID:       r.SessionID,
			GameType:        r.GameType,
			HighestRisk:     r.HighestRisk,
			NarrativeSource: r.NarrativeSource,
			CreatedAt:       r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, summaries)
}

// Export streams every report of a user as an xlsx workbook.
func (h *ReportsHandler) Export(c *gin.Context) {
	userID := c.Param("userId")
	gameType, ok := gameTypeQuery(c)
	if !ok {
		return
	}
	reports, err := h.userReports(c.Request.Context(), userID, gameType)
	if err != nil {
		h.log.Error("Failed to load reports for export", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports"})
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReports(&buf, reports); err != nil {
		h.log.Error("Failed to build export workbook", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-reports.xlsx"`, userID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Narrative asks the language model for a narrative and stores it next to the
// report. When the model is unavailable the plain summary is stored instead.
func (h *ReportsHandler) Narrative(c *gin.Context) {
	ctx := c.Request.Context()
	reportID := c.Param("id")

	record, err := repository.GetReport(ctx, reportID)
	if err != nil {
		h.respondLoadError(c, err)
		return
	}
	report, err := repository.DecodeReport(record)
	if err != nil {
		h.respondLoadError(c, err)
		return
	}

	payload, err := repository.GetSessionPayload(ctx, report.SessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.log.Warn("Failed to load session payload for narrative", zap.Error(err), zap.String("report_id", reportID))
	}

	out := h.narrator.Narrate(ctx, report, payload)
	if out.Err != nil {
		h.log.Warn("Narrative model unavailable, using summary", zap.Error(out.Err), zap.String("report_id", reportID))
	}

	if err := repository.AttachNarrative(ctx, reportID, out.AIReport, out.Narrative, out.Source); err != nil {
		h.log.Error("Failed to store narrative", zap.Error(err), zap.String("report_id", reportID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store narrative"})
		return
	}
	h.cache.Invalidate(ctx, reportID)

	c.JSON(http.StatusOK, &models.ReportView{
		Report:          report,
		AIReport:        []byte(out.AIReport),
		AINarrative:     out.Narrative,
		NarrativeSource: out.Source,
	})
}

func (h *ReportsHandler) loadView(ctx context.Context, reportID string) (*models.ReportView, error) {
	if view, ok := h.cache.Get(ctx, reportID); ok {
		return view, nil
	}

	record, err := repository.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	report, err := repository.DecodeReport(record)
	if err != nil {
		return nil, err
	}

	view := &models.ReportView{
		Report:          report,
		AIReport:        record.AIReport,
		AINarrative:     record.AINarrative,
		NarrativeSource: record.NarrativeSource,
	}
	h.cache.Set(ctx, view)
	return view, nil
}

func (h *ReportsHandler) userReports(ctx context.Context, userID string, gameType models.GameType) ([]*models.Report, error) {
	records, err := repository.ListReports(ctx, userID, gameType, 0)
	if err != nil {
		return nil, err
	}
	reports := make([]*models.Report, 0, len(records))
	for i := range records {
		report, err := repository.DecodeReport(&records[i])
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (h *ReportsHandler) respondLoadError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	h.log.Error("Failed to load report", zap.Error(err), zap.String("report_id", c.Param("id")))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report"})
}

// gameTypeQuery reads the optional gameType filter and answers 400 when it
// names an unknown game.
func gameTypeQuery(c *gin.Context) (models.GameType, bool) {
	gameType := models.GameType(c.Query("gameType"))
	if gameType != "" && !gameType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown gameType"})
		return "", false
	}
	return gameType, true
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}
