package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// Scorer runs the session scoring pipeline against one threshold table.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	th   Thresholds
	text ReportText
}

// NewScorer builds a Scorer from a loaded scoring table.
func NewScorer(table ScoringTable) *Scorer {
	return &Scorer{th: table.Thresholds, text: table.Report}
}

// DefaultScorer uses the compiled-in thresholds and report text.
func DefaultScorer() *Scorer {
	return NewScorer(DefaultScoringTable())
}

// Thresholds returns a copy of the table the scorer was built with.
func (s *Scorer) Thresholds() Thresholds {
	return s.th
}

// Score validates raw session JSON and runs every stage. Validation failures
// stop the pipeline before any metric is computed.
func (s *Scorer) Score(raw []byte, now time.Time) (*models.Report, ValidationErrors) {
	session, errs := Validate(raw)
	if len(errs) > 0 {
		return nil, errs
	}
	return s.ScoreSession(session, now), nil
}

// ScoreSession runs the computation stages over an already validated session.
func (s *Scorer) ScoreSession(session *models.Session, now time.Time) *models.Report {
	m := s.ComputeMetrics(session)
	scores := s.ComputeDomainScores(session, m)
	flags := s.EvaluateRisks(session, m, scores)
	return s.Assemble(session, m, scores, flags, now)
}

// inputs are the session values after optional fields have been resolved.
type inputs struct {
	totalTrials      float64
	correctTrials    float64
	inhibitoryErrors float64
	memoryErrors     float64
	memoryGiven      bool
	mazeCollisions   float64
	blinkRate        float64
	fixationMs       float64
	gazePct          float64
	attention        float64
	stress           float64
	defaulted        map[string]bool
}

func (s *Scorer) resolve(session *models.Session) inputs {
	d := s.th.Defaults
	in := inputs{
		totalTrials:   session.Game.TotalTrials,
		correctTrials: session.Game.CorrectTrials,
		defaulted:     make(map[string]bool),
	}

	pick := func(path string, v *float64, def float64) float64 {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			in.defaulted[path] = true
			return def
		}
		return *v
	}

	in.inhibitoryErrors = pick("gameMetrics.inhibitoryErrors", session.Game.InhibitoryErrors, 0)
	in.mazeCollisions = pick("gameMetrics.mazeCollisions", session.Game.MazeCollisions, 0)
	in.memoryErrors = pick("gameMetrics.memoryErrors", session.Game.MemoryErrors, 0)
	in.memoryGiven = !in.defaulted["gameMetrics.memoryErrors"]

	in.blinkRate = pick("visionMetrics.blinkRate", session.Vision.BlinkRate, d.BlinkRate)
	in.fixationMs = pick("visionMetrics.avgFixationMs", session.Vision.AvgFixationMs, d.AvgFixationMs)
	in.gazePct = pick("visionMetrics.gazeOnScreenPct", session.Vision.GazeOnScreenPct, d.GazeOnScreenPct)
	in.attention = pick("visionMetrics.attentionScore", session.Vision.AttentionScore, d.AttentionScore)
	in.stress = pick("visionMetrics.stressScore", session.Vision.StressScore, d.StressScore)
	return in
}

// fallbacks lists the defaulted paths in a stable order.
func (in inputs) fallbacks() []string {
	out := make([]string, 0, len(in.defaulted))
	for path := range in.defaulted {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// guardedTrials never returns less than one, so ratios over it are defined.
func (in inputs) guardedTrials() float64 {
	if in.totalTrials < 1 {
		return 1
	}
	return in.totalTrials
}

// memoryAccuracyPct is 100 minus the memory error rate, or the configured
// default when memoryErrors was not reported.
func (s *Scorer) memoryAccuracyPct(in inputs) float64 {
	if !in.memoryGiven {
		return s.th.Defaults.MemoryAccuracyPct
	}
	return 100 - in.memoryErrors/in.guardedTrials()*100
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampScore(v float64) float64 {
	return clamp(v, 0, 100)
}
