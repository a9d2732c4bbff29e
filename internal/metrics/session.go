package metrics

import (
	"math"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// ComputeMetrics derives the scalar statistics of a validated session.
//
// Reaction-time statistics come from trial_results when at least one trial
// has a positive reaction time; otherwise gameMetrics.averageReactionTime is
// used with a standard deviation of zero. Accuracy always comes from the
// gameMetrics counters.
func (s *Scorer) ComputeMetrics(session *models.Session) models.Metrics {
	in := s.resolve(session)
	rts := ValidReactionTimes(session.TrialResults)

	m := models.Metrics{
		AccuracyPct:     CalculateAccuracy(in.correctTrials, in.totalTrials),
		BlinkRatePerMin: s.blinkRatePerMinute(in.blinkRate, session.DurationSec),
		GazeOnScreenPct: in.gazePct,
		FixationMeanMs:  in.fixationMs,
		MazeCollisions:  in.mazeCollisions,
		RTSampleSize:    len(rts),
	}

	if len(rts) > 0 {
		m.RTSource = models.RTSourceTrials
		m.AvgRTMs = CalculateMean(rts)
		m.RTStdMs = CalculateStdDev(rts)
		m.ShortRTRatePct = percentWhere(rts, func(rt float64) bool { return rt < s.th.ReactionTime.ShortMs })
		m.LongRTRatePct = percentWhere(rts, func(rt float64) bool { return rt > s.th.ReactionTime.LongMs })
		m.RTTrendMs = CalculateRTTrend(rts)
	} else if session.Game.AverageReactionTime > 0 {
		m.RTSource = models.RTSourceGame
		m.AvgRTMs = session.Game.AverageReactionTime
	} else {
		m.RTSource = models.RTSourceMissing
	}

	if m.AvgRTMs > 0 {
		m.RTCV = m.RTStdMs / m.AvgRTMs
	}
	return finiteMetrics(m)
}

// finiteMetrics zeroes any statistic that overflowed, so extreme inputs still
// produce an encodable report.
func finiteMetrics(m models.Metrics) models.Metrics {
	for _, v := range []*float64{
		&m.AccuracyPct, &m.AvgRTMs, &m.RTStdMs, &m.RTCV,
		&m.ShortRTRatePct, &m.LongRTRatePct, &m.BlinkRatePerMin,
		&m.GazeOnScreenPct, &m.FixationMeanMs, &m.MazeCollisions, &m.RTTrendMs,
	} {
		*v = finiteOrZero(*v)
	}
	return m
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CalculateAccuracy returns correct/total as a percentage, or 0 when no
// trials were recorded.
func CalculateAccuracy(correct, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return correct / total * 100
}

// ValidReactionTimes keeps the positive reaction times in trial order.
func ValidReactionTimes(trials []models.TrialResult) []float64 {
	rts := make([]float64, 0, len(trials))
	for _, t := range trials {
		rt := t.ReactionTimeMs
		if rt > 0 && !math.IsInf(rt, 0) && !math.IsNaN(rt) {
			rts = append(rts, rt)
		}
	}
	return rts
}

// CalculateMean keeps a running mean so that large samples do not overflow
// an intermediate sum.
func CalculateMean(values []float64) float64 {
	var mean float64
	for i, v := range values {
		mean += (v - mean) / float64(i+1)
	}
	return mean
}

// CalculateStdDev is the population standard deviation; zero for fewer than
// two samples.
func CalculateStdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	avg := CalculateMean(values)
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - avg
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}

// CalculateRTTrend compares the last third of the trials with the first
// third. Positive values mean responses slowed down over the session.
func CalculateRTTrend(rts []float64) float64 {
	third := len(rts) / 3
	if third == 0 {
		return 0
	}
	return CalculateMean(rts[len(rts)-third:]) - CalculateMean(rts[:third])
}

func percentWhere(values []float64, match func(float64) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if match(v) {
			count++
		}
	}
	return float64(count) / float64(len(values)) * 100
}

func (s *Scorer) blinkRatePerMinute(blinkRate, durationSec float64) float64 {
	if s.th.BlinkRateUnit != BlinkPerSession {
		return blinkRate
	}
	if durationSec <= 0 {
		return 0
	}
	return blinkRate * 60 / durationSec
}
