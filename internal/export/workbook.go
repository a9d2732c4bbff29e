package export

import (
	"fmt"
	"io"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	ReportsSheet  = "Reports"
	EvidenceSheet = "Evidence"
)

var conditions = []string{models.ConditionADHD, models.ConditionPTSD, models.ConditionAlzheimers}

// WriteReports writes one row per report on the Reports sheet and one row per
// evidence item on the Evidence sheet.
func WriteReports(w io.Writer, reports []*models.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(EvidenceSheet); err != nil {
		return fmt.Errorf("failed to create evidence sheet: %w", err)
	}

	header := []interface{}{"reportId", "sessionId", "gameType", "timestamp", "accuracy_pct", "avg_rt_ms", "rt_cv"}
	for _, d := range models.Domains {
		header = append(header, d)
	}
	for _, c := range conditions {
		header = append(header, c+" level", c+" confidence")
	}
	if err := setRow(f, ReportsSheet, 1, header); err != nil {
		return err
	}
	if err := setRow(f, EvidenceSheet, 1, []interface{}{"reportId", "condition", "path", "value", "why", "points", "defaulted"}); err != nil {
		return err
	}

	evidenceRow := 2
	for i, r := range reports {
		m := r.ComputedMetrics
		row := []interface{}{r.ReportID, r.SessionID, string(r.GameType), r.Timestamp.UTC().Format(time.RFC3339), m.AccuracyPct, m.AvgRTMs, m.RTCV}
		for _, d := range models.Domains {
			v, _ := r.DomainValue(d)
			row = append(row, v)
		}
		flags := flagsByCondition(r.RiskFlags)
		for _, c := range conditions {
			flag := flags[c]
			row = append(row, string(flag.Level), flag.Confidence)
		}
		if err := setRow(f, ReportsSheet, i+2, row); err != nil {
			return err
		}

		for _, flag := range r.RiskFlags {
			for _, e := range flag.Evidence {
				ev := []interface{}{r.ReportID, flag.Condition, e.Path, e.Value, e.Why, e.Points, e.Defaulted}
				if err := setRow(f, EvidenceSheet, evidenceRow, ev); err != nil {
					return err
				}
				evidenceRow++
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func flagsByCondition(flags []models.RiskFlag) map[string]models.RiskFlag {
	out := make(map[string]models.RiskFlag, len(flags))
	for _, f := range flags {
		out[f.Condition] = f
	}
	return out
}
