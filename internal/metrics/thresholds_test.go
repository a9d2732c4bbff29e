package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTable(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write thresholds: %v", err)
	}
	return path
}

func TestLoadScoringTableOverridesDefaults(t *testing.T) {
	path := writeTable(t, `
thresholds:
  blink_rate_unit: per_session
  adhd:
    rt_cv:
      threshold: 0.5
report:
  limitations:
    - "Only one limitation."
`)
	table, err := LoadScoringTable(path)
	if err != nil {
		t.Fatalf("LoadScoringTable: %v", err)
	}
	if table.Thresholds.BlinkRateUnit != BlinkPerSession {
		t.Errorf("blink_rate_unit = %q", table.Thresholds.BlinkRateUnit)
	}
	if table.Thresholds.ADHD.RTCV.Threshold != 0.5 {
		t.Errorf("rt_cv threshold = %v, want 0.5", table.Thresholds.ADHD.RTCV.Threshold)
	}
	if table.Thresholds.ADHD.RTCV.Points != 30 {
		t.Errorf("rt_cv points = %v, want the default 30", table.Thresholds.ADHD.RTCV.Points)
	}
	if table.Thresholds.PTSD.StressHigh.Threshold != 40 {
		t.Error("untouched sections should keep their defaults")
	}
	if len(table.Report.Limitations) != 1 || len(table.Report.Recommendations) == 0 {
		t.Errorf("report text = %+v", table.Report)
	}
}

func TestLoadScoringTableRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unit", "thresholds:\n  blink_rate_unit: per_hour\n", "blink_rate_unit"},
		{"formula", "thresholds:\n  cognitive_load_formula: magic\n", "cognitive_load_formula"},
		{"bounds", "thresholds:\n  reaction_time:\n    slowest_ms: 100\n", "slowest_ms"},
		{"yaml", "thresholds: [", "unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScoringTable(writeTable(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadScoringTableMissingFile(t *testing.T) {
	if _, err := LoadScoringTable(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestShippedThresholdsFileLoads(t *testing.T) {
	table, err := LoadScoringTable(filepath.Join("..", "..", "config", "thresholds.yaml"))
	if err != nil {
		t.Fatalf("load shipped thresholds: %v", err)
	}
	if table.Thresholds != DefaultThresholds() {
		t.Error("config/thresholds.yaml drifted from the compiled-in defaults")
	}
}
