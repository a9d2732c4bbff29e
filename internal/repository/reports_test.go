package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/database"
	"github.com/m-karthika14/mindmirrorai/internal/metrics"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"go.uber.org/zap"
)

const rawSession = `{"sessionId": "%s", "userId": "user-1", "gameType": "%s",
	"gameMetrics": {"totalTrials": 10, "correctTrials": 9, "averageReactionTime": 480},
	"visionMetrics": {"stressScore": 45}, "trial_results": []}`

func setupDB(t *testing.T) {
	t.Helper()
	conf := config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file::memory:", LogLevel: "silent"}
	db, err := database.Open(conf, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func saveReport(t *testing.T, sessionID string, game models.GameType, at time.Time) *models.Report {
	t.Helper()
	raw := []byte(fmt.Sprintf(rawSession, sessionID, game))
	report, errs := metrics.DefaultScorer().Score(raw, at)
	if len(errs) > 0 {
		t.Fatalf("score: %v", errs)
	}
	if _, err := SaveScoredSession(context.Background(), raw, report); err != nil {
		t.Fatalf("SaveScoredSession: %v", err)
	}
	return report
}

func TestSaveAndGetReport(t *testing.T) {
	setupDB(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	report := saveReport(t, "s1", models.GamePTSD, now)

	record, err := GetReport(context.Background(), report.ReportID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if record.HighestRisk != models.RiskHigh {
		t.Errorf("highest risk = %s, want High", record.HighestRisk)
	}
	decoded, err := DecodeReport(record)
	if err != nil {
		t.Fatalf("DecodeReport: %v", err)
	}
	if decoded.ReportID != report.ReportID || len(decoded.DomainScores) != 8 {
		t.Errorf("decoded report = %+v", decoded)
	}

	var sessions int64
	database.DB.Model(&models.SessionRecord{}).Where("session_id = ?", "s1").Count(&sessions)
	if sessions != 1 {
		t.Errorf("stored sessions = %d, want 1", sessions)
	}

	payload, err := GetSessionPayload(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSessionPayload: %v", err)
	}
	if !strings.Contains(string(payload), `"sessionId": "s1"`) {
		t.Errorf("payload = %s", payload)
	}
	if _, err := GetSessionPayload(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetReportNotFound(t *testing.T) {
	setupDB(t)
	if _, err := GetReport(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListReportsFiltersAndOrders(t *testing.T) {
	setupDB(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	saveReport(t, "old", models.GameTyping, base)
	saveReport(t, "new", models.GameTyping, base.Add(time.Hour))
	saveReport(t, "other", models.GamePTSD, base.Add(2*time.Hour))

	all, err := ListReports(context.Background(), "user-1", "", 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(all) != 3 || all[0].SessionID != "other" {
		t.Errorf("all reports = %d, first %q", len(all), all[0].SessionID)
	}

	typing, err := ListReports(context.Background(), "user-1", models.GameTyping, 0)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(typing) != 2 || typing[0].SessionID != "new" || typing[1].SessionID != "old" {
		t.Errorf("typing reports out of order: %+v", typing)
	}

	limited, _ := ListReports(context.Background(), "user-1", "", 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d reports", len(limited))
	}
}

func TestAttachNarrativeKeepsBody(t *testing.T) {
	setupDB(t)
	report := saveReport(t, "s1", models.GameADHD, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	before, _ := GetReport(context.Background(), report.ReportID)

	err := AttachNarrative(context.Background(), report.ReportID, []byte(`{"reportId":"x"}`), "All good.", "model")
	if err != nil {
		t.Fatalf("AttachNarrative: %v", err)
	}
	after, _ := GetReport(context.Background(), report.ReportID)
	if string(after.Body) != string(before.Body) {
		t.Error("report body changed after attaching a narrative")
	}
	if after.AINarrative != "All good." || after.NarrativeSource != "model" || len(after.AIReport) == 0 {
		t.Errorf("narrative columns = %q %q %s", after.AINarrative, after.NarrativeSource, after.AIReport)
	}

	if err := AttachNarrative(context.Background(), "missing", nil, "x", "fallback"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPurgeBefore(t *testing.T) {
	setupDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	saveReport(t, "expired", models.GameTyping, base)
	saveReport(t, "kept", models.GameTyping, base.AddDate(0, 2, 0))

	sessions, reports, err := PurgeBefore(context.Background(), base.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if sessions != 1 || reports != 1 {
		t.Errorf("purged %d sessions and %d reports, want 1 and 1", sessions, reports)
	}
	left, _ := ListReports(context.Background(), "user-1", "", 0)
	if len(left) != 1 || left[0].SessionID != "kept" {
		t.Errorf("remaining reports = %+v", left)
	}
}
