package metrics

import (
	"fmt"
	"strings"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// RenderSummary writes a plain-text narrative of a report. It is used when no
// language model is configured or the model call fails.
func RenderSummary(r *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Screening summary for session %s (%s)\n\n", r.SessionID, r.GameType)

	m := r.ComputedMetrics
	fmt.Fprintf(&b, "Accuracy was %.1f%% with an average reaction time of %.0fms", m.AccuracyPct, m.AvgRTMs)
	if m.RTSource == models.RTSourceMissing {
		b.WriteString(" (no reaction-time data was recorded)")
	}
	b.WriteString(".\n\n")

	b.WriteString("Domain scores:\n")
	for _, d := range r.DomainScores {
		note := ""
		if d.LowerIsBetter {
			note = " (lower is better)"
		}
		fmt.Fprintf(&b, "- %s: %.1f%s\n", d.Domain, d.Value, note)
	}

	b.WriteString("\nScreening flags:\n")
	for _, f := range r.RiskFlags {
		fmt.Fprintf(&b, "- %s: %s (confidence %.0f%%)\n", f.Condition, f.Level, f.Confidence)
		for _, e := range f.Evidence {
			suffix := ""
			if e.Defaulted {
				suffix = " [default value]"
			}
			fmt.Fprintf(&b, "    %s%s\n", e.Why, suffix)
		}
	}

	if len(r.Fallbacks) > 0 {
		fmt.Fprintf(&b, "\nDefaults were used for: %s.\n", strings.Join(r.Fallbacks, ", "))
	}

	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	if len(r.Limitations) > 0 {
		b.WriteString("\nLimitations:\n")
		for _, l := range r.Limitations {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	return b.String()
}
