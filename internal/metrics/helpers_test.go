package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func trialsWithRTs(rts ...float64) []models.TrialResult {
	trials := make([]models.TrialResult, len(rts))
	for i, rt := range rts {
		trials[i] = models.TrialResult{TrialID: i + 1, ReactionTimeMs: rt, Correct: true}
	}
	return trials
}

func baseSession() *models.Session {
	return &models.Session{
		SessionID:   "sess-1",
		UserID:      "user-1",
		GameType:    models.GameNeuroBalance,
		DurationSec: 120,
		Game: models.GameMetrics{
			TotalTrials:         60,
			CorrectTrials:       48,
			AverageReactionTime: 700,
		},
		TrialResults: trialsWithRTs(456, 623, 1245, 389, 834, 125, 567, 2145),
	}
}

func assertClose(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func domain(t *testing.T, scores []models.DomainScore, name string) models.DomainScore {
	t.Helper()
	for _, d := range scores {
		if d.Domain == name {
			return d
		}
	}
	t.Fatalf("domain %s not found", name)
	return models.DomainScore{}
}
