package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/m-karthika14/mindmirrorai/internal/models"
	"go.uber.org/zap"
)

// Charts returns echarts option objects for one report's domain scores and
// risk confidences. The frontend passes them straight to echarts.setOption.
func (h *ReportsHandler) Charts(c *gin.Context) {
	view, err := h.loadView(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondLoadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"domainScores":   generateDomainChart(view.Report).JSON(),
		"riskConfidence": generateRiskChart(view.Report).JSON(),
	})
}

// Trend charts one domain score across a user's reports, oldest first.
func (h *ReportsHandler) Trend(c *gin.Context) {
	domain := c.DefaultQuery("domain", models.DomainNeuroBalance)
	if !models.ValidDomain(domain) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown domain"})
		return
	}
	gameType, ok := gameTypeQuery(c)
	if !ok {
		return
	}

	reports, err := h.userReports(c.Request.Context(), c.Param("userId"), gameType)
	if err != nil {
		h.log.Error("Failed to load reports for trend", zap.Error(err), zap.String("user_id", c.Param("userId")))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports"})
		return
	}

	c.JSON(http.StatusOK, generateTrendChart(reports, domain).JSON())
}

func generateDomainChart(r *models.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Domain Scores",
			Subtitle: string(r.GameType),
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(r.DomainScores))
	items := make([]opts.BarData, 0, len(r.DomainScores))
	for _, d := range r.DomainScores {
		names = append(names, d.Domain)
		items = append(items, opts.BarData{Name: d.Domain, Value: round1(d.Value)})
	}
	bar.SetXAxis(names).AddSeries("Score", items)
	return bar
}

func generateRiskChart(r *models.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Screening Confidence",
			Subtitle: "Not a diagnosis",
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(r.RiskFlags))
	items := make([]opts.BarData, 0, len(r.RiskFlags))
	for _, f := range r.RiskFlags {
		names = append(names, f.Condition)
		items = append(items, opts.BarData{
			Name:      string(f.Level),
			Value:     f.Confidence,
			ItemStyle: &opts.ItemStyle{Color: levelColor(f.Level)},
		})
	}
	bar.SetXAxis(names).AddSeries("Confidence", items)
	return bar
}

func generateTrendChart(reports []*models.Report, domain string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Score Over Time",
			Subtitle: domain,
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	// Reports arrive newest first.
	items := make([]opts.LineData, 0, len(reports))
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		v, _ := r.DomainValue(domain)
		items = append(items, opts.LineData{Value: []interface{}{r.Timestamp, round1(v)}})
	}

	line.AddSeries(domain, items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

func levelColor(level models.RiskLevel) string {
	switch level {
	case models.RiskHigh:
		return "#d9534f"
	case models.RiskModerate:
		return "#f0ad4e"
	}
	return "#5cb85c"
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
