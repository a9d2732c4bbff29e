package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-karthika14/mindmirrorai/internal/database"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a report id does not exist.
var ErrNotFound = errors.New("record not found")

// SaveScoredSession stores the raw session and its assembled report in one
// transaction.
func SaveScoredSession(ctx context.Context, raw []byte, report *models.Report) (*models.ReportRecord, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	session := &models.SessionRecord{
		ID:        uuid.New(),
		SessionID: report.SessionID,
		UserID:    report.UserID,
		GameType:  report.GameType,
		Payload:   datatypes.JSON(raw),
		CreatedAt: report.Timestamp,
	}
	record := &models.ReportRecord{
		ID:          uuid.New(),
		ReportID:    report.ReportID,
		SessionID:   report.SessionID,
		UserID:      report.UserID,
		GameType:    report.GameType,
		HighestRisk: models.HighestLevel(report.RiskFlags),
		Body:        datatypes.JSON(body),
		CreatedAt:   report.Timestamp,
	}

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetReport loads a stored report by its report id.
func GetReport(ctx context.Context, reportID string) (*models.ReportRecord, error) {
	var record models.ReportRecord
	err := database.DB.WithContext(ctx).Where("report_id = ?", reportID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListReports returns a user's reports, newest first. An empty gameType
// matches every game.
func ListReports(ctx context.Context, userID string, gameType models.GameType, limit int) ([]models.ReportRecord, error) {
	query := database.DB.WithContext(ctx).Where("user_id = ?", userID)
	if gameType != "" {
		query = query.Where("game_type = ?", gameType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.ReportRecord
	if err := query.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// AttachNarrative fills the narrative columns of a report. The report body is
// left untouched.
func AttachNarrative(ctx context.Context, reportID string, aiReport []byte, narrative, source string) error {
	updates := map[string]interface{}{
		"ai_narrative":     narrative,
		"narrative_source": source,
		"updated_at":       time.Now().UTC(),
	}
	if len(aiReport) > 0 {
		updates["ai_report"] = datatypes.JSON(aiReport)
	}

	result := database.DB.WithContext(ctx).
		Model(&models.ReportRecord{}).
		Where("report_id = ?", reportID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeBefore deletes sessions and reports created before cutoff.
func PurgeBefore(ctx context.Context, cutoff time.Time) (sessions int64, reports int64, err error) {
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("created_at < ?", cutoff).Delete(&models.SessionRecord{})
		if res.Error != nil {
			return fmt.Errorf("failed to purge sessions: %w", res.Error)
		}
		sessions = res.RowsAffected

		res = tx.Where("created_at < ?", cutoff).Delete(&models.ReportRecord{})
		if res.Error != nil {
			return fmt.Errorf("failed to purge reports: %w", res.Error)
		}
		reports = res.RowsAffected
		return nil
	})
	return sessions, reports, err
}

// DecodeReport unmarshals the stored report body.
func DecodeReport(record *models.ReportRecord) (*models.Report, error) {
	var report models.Report
	if err := json.Unmarshal(record.Body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode stored report %s: %w", record.ReportID, err)
	}
	return &report, nil
}

// GetSessionPayload returns the raw JSON of the most recent submission of a
// session id.
func GetSessionPayload(ctx context.Context, sessionID string) (json.RawMessage, error) {
	var record models.SessionRecord
	err := database.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(record.Payload), nil
}
