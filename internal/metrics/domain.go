package metrics

import (
	"fmt"
	"math"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// ComputeDomainScores maps metrics onto the eight domain scores. Every value
// is clamped to [0, 100] and keeps the formula and inputs that produced it.
func (s *Scorer) ComputeDomainScores(session *models.Session, m models.Metrics) []models.DomainScore {
	in := s.resolve(session)

	attention := models.DomainScore{
		Domain:  models.DomainAttention,
		Value:   clampScore(0.5*in.attention + 0.5*m.AccuracyPct),
		Formula: "0.5*attentionScore + 0.5*accuracy_pct",
		Inputs: map[string]float64{
			"visionMetrics.attentionScore": in.attention,
			"accuracy_pct":                 m.AccuracyPct,
		},
	}

	inhibitory := models.DomainScore{
		Domain:  models.DomainInhibitoryControl,
		Value:   clampScore(100 - in.inhibitoryErrors/in.guardedTrials()*100),
		Formula: "100 - (inhibitoryErrors/max(totalTrials,1))*100",
		Inputs: map[string]float64{
			"gameMetrics.inhibitoryErrors": in.inhibitoryErrors,
			"gameMetrics.totalTrials":      in.totalTrials,
		},
	}

	speed := models.DomainScore{
		Domain:  models.DomainProcessingSpeed,
		Value:   s.processingSpeed(m.AvgRTMs),
		Formula: fmt.Sprintf("avg_rt_ms <= %[1]g -> 100; avg_rt_ms >= %[2]g -> 0; else 100 - (avg_rt_ms-%[1]g)/%[3]g*100",
			s.th.ReactionTime.FastestMs, s.th.ReactionTime.SlowestMs, s.th.ReactionTime.SlowestMs-s.th.ReactionTime.FastestMs),
		Inputs: map[string]float64{
			"avg_rt_ms": m.AvgRTMs,
		},
	}

	floor := s.th.MotorCollisionFloor
	motor := models.DomainScore{
		Domain:  models.DomainMotorControl,
		Value:   clampScore(100 * (1 - math.Min(m.MazeCollisions/floor, 1))),
		Formula: fmt.Sprintf("100 * (1 - min(maze_collisions/%g, 1))", floor),
		Inputs: map[string]float64{
			"maze_collisions": m.MazeCollisions,
		},
	}

	load := s.cognitiveLoad(m)

	memory := models.DomainScore{
		Domain:  models.DomainMemory,
		Value:   clampScore(s.memoryAccuracyPct(in)),
		Formula: fmt.Sprintf("100 - (memoryErrors/max(totalTrials,1))*100; %g when memoryErrors is absent",
			s.th.Defaults.MemoryAccuracyPct),
		Inputs: map[string]float64{
			"gameMetrics.totalTrials": in.totalTrials,
		},
	}
	if in.memoryGiven {
		memory.Inputs["gameMetrics.memoryErrors"] = in.memoryErrors
	}

	balance := models.DomainScore{
		Domain:  models.DomainNeuroBalance,
		Value:   clampScore((motor.Value + attention.Value + inhibitory.Value) / 3),
		Formula: "(motorControl + attention + inhibitoryControl) / 3",
		Inputs: map[string]float64{
			models.DomainMotorControl:      motor.Value,
			models.DomainAttention:         attention.Value,
			models.DomainInhibitoryControl: inhibitory.Value,
		},
	}

	stress := models.DomainScore{
		Domain:  models.DomainStressManagement,
		Value:   clampScore(100 - in.stress),
		Formula: "100 - stressScore",
		Inputs: map[string]float64{
			"visionMetrics.stressScore": in.stress,
		},
	}

	return []models.DomainScore{attention, inhibitory, speed, motor, load, memory, balance, stress}
}

func (s *Scorer) processingSpeed(avgRT float64) float64 {
	fastest, slowest := s.th.ReactionTime.FastestMs, s.th.ReactionTime.SlowestMs
	switch {
	case avgRT <= fastest:
		return 100
	case avgRT >= slowest:
		return 0
	default:
		return clampScore(100 - (avgRT-fastest)/(slowest-fastest)*100)
	}
}

// cognitiveLoad is the only domain where a lower value can be better; the
// composite variant inverts it so that higher is better like the others.
func (s *Scorer) cognitiveLoad(m models.Metrics) models.DomainScore {
	baseline := s.th.BlinkBaseline
	score := models.DomainScore{
		Domain:        models.DomainCognitiveLoad,
		LowerIsBetter: true,
		Inputs: map[string]float64{
			"rt_cv":              m.RTCV,
			"blink_rate_per_min": m.BlinkRatePerMin,
		},
	}

	switch s.th.CognitiveLoadFormula {
	case CognitiveLoadComposite:
		blinkNorm := math.Min(math.Abs(m.BlinkRatePerMin-baseline)/baseline, 1)
		score.Value = clampScore(100 - (m.RTCV*50 + blinkNorm*50))
		score.LowerIsBetter = false
		score.Formula = fmt.Sprintf("100 - (rt_cv*50 + min(|blink_rate_per_min-%[1]g|/%[1]g, 1)*50)", baseline)
	default:
		score.Value = clampScore((m.RTCV*100 + (m.BlinkRatePerMin-baseline)*2) / 2)
		score.Formula = fmt.Sprintf("(rt_cv*100 + (blink_rate_per_min-%g)*2) / 2", baseline)
	}
	return score
}
