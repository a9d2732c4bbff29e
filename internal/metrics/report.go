package metrics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// Assemble packages the computed stages into a report. The report id is the
// session id, the assembly time in Unix milliseconds and a short random
// suffix, so resubmissions of one session within a millisecond stay distinct.
func (s *Scorer) Assemble(session *models.Session, m models.Metrics, scores []models.DomainScore, flags models.RiskFlags, now time.Time) *models.Report {
	now = now.UTC()
	domainScores := make([]models.DomainScore, len(scores))
	copy(domainScores, scores)

	return &models.Report{
		ReportID:        fmt.Sprintf("%s-%d-%s", session.SessionID, now.UnixMilli(), uuid.NewString()[:8]),
		SessionID:       session.SessionID,
		UserID:          session.UserID,
		GameType:        session.EffectiveGameType(),
		Timestamp:       now,
		ComputedMetrics: m,
		DomainScores:    domainScores,
		RiskFlags:       flags.All(),
		Recommendations: append([]string(nil), s.text.Recommendations...),
		Limitations:     append([]string(nil), s.text.Limitations...),
		Fallbacks:       s.resolve(session).fallbacks(),
	}
}
