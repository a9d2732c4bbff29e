package metrics

import (
	"fmt"
	"math"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// flagBuilder accumulates evidence and confidence points for one condition.
type flagBuilder struct {
	flag   models.RiskFlag
	points float64
}

func newFlag(condition string) *flagBuilder {
	return &flagBuilder{flag: models.RiskFlag{
		Condition: condition,
		Level:     models.RiskLow,
		Evidence:  []models.Evidence{},
	}}
}

func (b *flagBuilder) add(path string, value float64, why string, points float64, defaulted bool) {
	b.flag.Evidence = append(b.flag.Evidence, models.Evidence{
		Path:      path,
		Value:     value,
		Why:       why,
		Points:    points,
		Defaulted: defaulted,
	})
	b.points += points
}

func (b *flagBuilder) build() models.RiskFlag {
	b.flag.Confidence = clamp(b.points, 0, 100)
	return b.flag
}

// EvaluateRisks applies the threshold table to produce the ADHD, PTSD and
// Alzheimer's screening flags. It never fails; absent inputs resolve to their
// defaults and the resulting evidence is marked as defaulted.
func (s *Scorer) EvaluateRisks(session *models.Session, m models.Metrics, scores []models.DomainScore) models.RiskFlags {
	in := s.resolve(session)
	return models.RiskFlags{
		ADHD:       s.evaluateADHD(in, m),
		PTSD:       s.evaluatePTSD(in, session.TrialResults),
		Alzheimers: s.evaluateAlzheimers(in, m, scores),
	}
}

func (s *Scorer) evaluateADHD(in inputs, m models.Metrics) models.RiskFlag {
	th := s.th.ADHD
	b := newFlag(models.ConditionADHD)

	if m.RTCV > th.RTCV.Threshold {
		b.add("computedMetrics.rt_cv", m.RTCV,
			fmt.Sprintf("Reaction-time variability above %.2f suggests inconsistent sustained attention.", th.RTCV.Threshold),
			th.RTCV.Points, false)
	}
	if m.ShortRTRatePct > th.ShortRTRatePct.Threshold {
		b.add("computedMetrics.short_rt_rate_pct", m.ShortRTRatePct,
			fmt.Sprintf("More than %.0f%% of responses were faster than %.0fms, a sign of impulsive responding.",
				th.ShortRTRatePct.Threshold, s.th.ReactionTime.ShortMs),
			th.ShortRTRatePct.Points, false)
	}
	ratio := in.inhibitoryErrors / in.guardedTrials()
	if ratio > th.InhibitoryErrorRatio.Threshold {
		b.add("gameMetrics.inhibitoryErrors", ratio,
			fmt.Sprintf("Inhibitory errors on more than %.0f%% of trials indicate weak response inhibition.",
				th.InhibitoryErrorRatio.Threshold*100),
			th.InhibitoryErrorRatio.Points, in.defaulted["gameMetrics.inhibitoryErrors"])
	}
	if m.BlinkRatePerMin > th.BlinkRatePerMin.Threshold {
		b.add("visionMetrics.blinkRate", m.BlinkRatePerMin,
			fmt.Sprintf("Blink rate above %.0f per minute is associated with restlessness and fatigue.", th.BlinkRatePerMin.Threshold),
			th.BlinkRatePerMin.Points, in.defaulted["visionMetrics.blinkRate"])
	}

	flag := b.build()
	switch n := len(flag.Evidence); {
	case n >= th.HighEvidence:
		flag.Level = models.RiskHigh
	case n >= th.ModerateEvidence:
		flag.Level = models.RiskModerate
	}
	return flag
}

func (s *Scorer) evaluatePTSD(in inputs, trials []models.TrialResult) models.RiskFlag {
	th := s.th.PTSD
	b := newFlag(models.ConditionPTSD)
	stressDefaulted := in.defaulted["visionMetrics.stressScore"]
	level := models.RiskLow

	switch {
	case in.stress >= th.StressHigh.Threshold:
		level = models.RiskHigh
		b.add("visionMetrics.stressScore", in.stress,
			fmt.Sprintf("Stress score of %.0f or more indicates marked physiological arousal.", th.StressHigh.Threshold),
			th.StressHigh.Points, stressDefaulted)
	case in.stress >= th.StressModerate.Threshold:
		level = models.RiskModerate
		b.add("visionMetrics.stressScore", in.stress,
			fmt.Sprintf("Stress score between %.0f and %.0f indicates elevated arousal.",
				th.StressModerate.Threshold, th.StressHigh.Threshold),
			th.StressModerate.Points, stressDefaulted)
	}

	if in.gazePct < th.GazeOnScreenPct.Threshold {
		b.add("visionMetrics.gazeOnScreenPct", in.gazePct,
			fmt.Sprintf("Gaze on screen below %.0f%% can reflect avoidance or hypervigilance.", th.GazeOnScreenPct.Threshold),
			th.GazeOnScreenPct.Points, in.defaulted["visionMetrics.gazeOnScreenPct"])
	}

	if fraction := s.distressTrialFraction(trials); fraction > th.DistressTrialFraction.Threshold {
		b.add("trial_results.vision_snapshot", fraction,
			fmt.Sprintf("More than %.0f%% of trials were errors accompanied by heavy blinking or gaze aversion.",
				th.DistressTrialFraction.Threshold*100),
			th.DistressTrialFraction.Points, false)
	}

	flag := b.build()
	flag.Level = level
	return flag
}

// distressTrialFraction is the share of all trials that were answered
// incorrectly while the webcam saw heavy blinking or gaze aversion.
func (s *Scorer) distressTrialFraction(trials []models.TrialResult) float64 {
	if len(trials) == 0 {
		return 0
	}
	th := s.th.PTSD
	count := 0
	for _, t := range trials {
		if t.Correct || t.VisionSnapshot == nil {
			continue
		}
		snap := t.VisionSnapshot
		blinking := snap.BlinkCount != nil && *snap.BlinkCount > th.DistressBlinkCount
		averted := snap.GazeOnScreenPct != nil && *snap.GazeOnScreenPct < th.DistressGazePct
		if blinking || averted {
			count++
		}
	}
	return float64(count) / float64(len(trials))
}

func (s *Scorer) evaluateAlzheimers(in inputs, m models.Metrics, scores []models.DomainScore) models.RiskFlag {
	th := s.th.Alzheimers
	b := newFlag(models.ConditionAlzheimers)

	if m.AvgRTMs > th.AvgRTMs.Threshold {
		b.add("computedMetrics.avg_rt_ms", m.AvgRTMs,
			fmt.Sprintf("Average reaction time above %.0fms indicates slowed processing.", th.AvgRTMs.Threshold),
			th.AvgRTMs.Points, false)
	}

	memory := s.memoryAccuracyPct(in)
	for _, d := range scores {
		if d.Domain == models.DomainMemory && !math.IsNaN(d.Value) {
			memory = d.Value
			break
		}
	}
	if memory < th.MemoryAccuracyPct.Threshold {
		b.add("gameMetrics.memoryErrors", memory,
			fmt.Sprintf("Memory accuracy below %.0f%% suggests difficulty retaining recent information.", th.MemoryAccuracyPct.Threshold),
			th.MemoryAccuracyPct.Points, !in.memoryGiven)
	}

	if in.gazePct < th.GazeOnScreenPct.Threshold {
		b.add("visionMetrics.gazeOnScreenPct", in.gazePct,
			fmt.Sprintf("Gaze on screen below %.0f%% can reflect reduced task engagement.", th.GazeOnScreenPct.Threshold),
			th.GazeOnScreenPct.Points, in.defaulted["visionMetrics.gazeOnScreenPct"])
	}

	flag := b.build()
	n := len(flag.Evidence)
	switch {
	case n >= th.HighEvidence && flag.Confidence >= th.HighConfidence:
		flag.Level = models.RiskHigh
	case n >= th.ModerateEvidence || flag.Confidence >= th.ModerateConfidence:
		flag.Level = models.RiskModerate
	}
	return flag
}
