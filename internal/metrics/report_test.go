package metrics

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

func TestScoreBuildsReport(t *testing.T) {
	report, errs := DefaultScorer().Score([]byte(validSession), fixedNow)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	if prefix := "sess-1-1773480600000-"; !strings.HasPrefix(report.ReportID, prefix) || len(report.ReportID) != len(prefix)+8 {
		t.Errorf("reportId = %q, want %q followed by an 8 character suffix", report.ReportID, prefix)
	}
	if !report.Timestamp.Equal(fixedNow) {
		t.Errorf("timestamp = %v, want %v", report.Timestamp, fixedNow)
	}
	if report.GameType != models.GamePTSD {
		t.Errorf("gameType = %q", report.GameType)
	}
	if len(report.DomainScores) != 8 || len(report.RiskFlags) != 3 {
		t.Errorf("got %d domain scores and %d risk flags", len(report.DomainScores), len(report.RiskFlags))
	}
	if report.RiskFlags[0].Condition != models.ConditionADHD ||
		report.RiskFlags[1].Condition != models.ConditionPTSD ||
		report.RiskFlags[2].Condition != models.ConditionAlzheimers {
		t.Errorf("risk flags out of order: %+v", report.RiskFlags)
	}
	if len(report.Recommendations) == 0 || len(report.Limitations) == 0 {
		t.Error("static text blocks are missing")
	}
	for _, path := range []string{"visionMetrics.blinkRate", "visionMetrics.attentionScore", "gameMetrics.memoryErrors"} {
		found := false
		for _, f := range report.Fallbacks {
			if f == path {
				found = true
			}
		}
		if !found {
			t.Errorf("fallbacks %v missing %s", report.Fallbacks, path)
		}
	}
}

func TestScoreStopsOnValidationErrors(t *testing.T) {
	report, errs := DefaultScorer().Score([]byte(`{"sessionId": "s"}`), fixedNow)
	if report != nil {
		t.Error("no report should be built for an invalid session")
	}
	if len(errs) != 3 {
		t.Errorf("errors = %v, want 3", errs)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := DefaultScorer()
	first, _ := s.Score([]byte(validSession), fixedNow)
	second, _ := s.Score([]byte(validSession), fixedNow)
	if first.ReportID == second.ReportID {
		t.Errorf("two submissions share report id %q", first.ReportID)
	}
	first.ReportID, second.ReportID = "", ""
	if !reflect.DeepEqual(first, second) {
		t.Error("scoring the same session twice produced different reports")
	}
}

func TestZeroTrialReportSerializes(t *testing.T) {
	raw := `{"sessionId": "z", "gameMetrics": {"totalTrials": 0, "correctTrials": 0, "averageReactionTime": 0},
		"visionMetrics": {}, "trial_results": []}`
	report, errs := DefaultScorer().Score([]byte(raw), fixedNow)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	// encoding/json rejects NaN and Inf, so a clean marshal proves none leaked.
	if _, err := json.Marshal(report); err != nil {
		t.Fatalf("marshal report: %v", err)
	}
	if report.ComputedMetrics.AccuracyPct != 0 {
		t.Errorf("accuracy_pct = %v, want 0", report.ComputedMetrics.AccuracyPct)
	}
	if v, _ := report.DomainValue(models.DomainInhibitoryControl); v != 100 {
		t.Errorf("inhibitoryControl = %v, want 100", v)
	}
}

func TestAssembleCopiesStaticText(t *testing.T) {
	s := DefaultScorer()
	report, _ := s.Score([]byte(validSession), fixedNow)
	report.Recommendations[0] = "changed"

	again, _ := s.Score([]byte(validSession), fixedNow)
	if again.Recommendations[0] == "changed" {
		t.Error("reports share the scorer's recommendation slice")
	}
}

func TestRenderSummary(t *testing.T) {
	report, _ := DefaultScorer().Score([]byte(validSession), fixedNow)
	summary := RenderSummary(report)

	for _, want := range []string{"sess-1", "attention", "PTSD: Moderate", "Recommendations:", "Limitations:", "Defaults were used for"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
