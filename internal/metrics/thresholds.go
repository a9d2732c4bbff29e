package metrics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Blink-rate conventions.
const (
	BlinkPerMinute  = "per_minute"
	BlinkPerSession = "per_session"
)

// Cognitive-load formula variants.
const (
	CognitiveLoadVariability = "variability"
	CognitiveLoadComposite   = "composite"
)

// Check is a single threshold with the confidence points it contributes.
type Check struct {
	Threshold float64 `yaml:"threshold"`
	Points    float64 `yaml:"points"`
}

// InputDefaults are substituted for optional session fields that are absent.
type InputDefaults struct {
	BlinkRate         float64 `yaml:"blink_rate"`
	AvgFixationMs     float64 `yaml:"avg_fixation_ms"`
	GazeOnScreenPct   float64 `yaml:"gaze_on_screen_pct"`
	AttentionScore    float64 `yaml:"attention_score"`
	StressScore       float64 `yaml:"stress_score"`
	MemoryAccuracyPct float64 `yaml:"memory_accuracy_pct"`
}

// ReactionTimeBounds bound the fast/slow response rates and the
// processing-speed mapping.
type ReactionTimeBounds struct {
	ShortMs   float64 `yaml:"short_ms"`
	LongMs    float64 `yaml:"long_ms"`
	FastestMs float64 `yaml:"fastest_ms"`
	SlowestMs float64 `yaml:"slowest_ms"`
}

type ADHDThresholds struct {
	RTCV                 Check `yaml:"rt_cv"`
	ShortRTRatePct       Check `yaml:"short_rt_rate_pct"`
	InhibitoryErrorRatio Check `yaml:"inhibitory_error_ratio"`
	BlinkRatePerMin      Check `yaml:"blink_rate_per_min"`
	HighEvidence         int   `yaml:"high_evidence"`
	ModerateEvidence     int   `yaml:"moderate_evidence"`
}

type PTSDThresholds struct {
	StressHigh            Check   `yaml:"stress_high"`
	StressModerate        Check   `yaml:"stress_moderate"`
	GazeOnScreenPct       Check   `yaml:"gaze_on_screen_pct"`
	DistressTrialFraction Check   `yaml:"distress_trial_fraction"`
	DistressBlinkCount    float64 `yaml:"distress_blink_count"`
	DistressGazePct       float64 `yaml:"distress_gaze_pct"`
}

type AlzheimersThresholds struct {
	AvgRTMs            Check   `yaml:"avg_rt_ms"`
	MemoryAccuracyPct  Check   `yaml:"memory_accuracy_pct"`
	GazeOnScreenPct    Check   `yaml:"gaze_on_screen_pct"`
	HighEvidence       int     `yaml:"high_evidence"`
	HighConfidence     float64 `yaml:"high_confidence"`
	ModerateEvidence   int     `yaml:"moderate_evidence"`
	ModerateConfidence float64 `yaml:"moderate_confidence"`
}

// Thresholds is the single table of every constant the scoring pipeline uses.
type Thresholds struct {
	BlinkRateUnit        string               `yaml:"blink_rate_unit"`
	CognitiveLoadFormula string               `yaml:"cognitive_load_formula"`
	BlinkBaseline        float64              `yaml:"blink_baseline"`
	MotorCollisionFloor  float64              `yaml:"motor_collision_floor"`
	ReactionTime         ReactionTimeBounds   `yaml:"reaction_time"`
	Defaults             InputDefaults        `yaml:"defaults"`
	ADHD                 ADHDThresholds       `yaml:"adhd"`
	PTSD                 PTSDThresholds       `yaml:"ptsd"`
	Alzheimers           AlzheimersThresholds `yaml:"alzheimers"`
}

// ReportText is the static text attached to every report.
type ReportText struct {
	Recommendations []string `yaml:"recommendations"`
	Limitations     []string `yaml:"limitations"`
}

// ScoringTable is the on-disk shape of the thresholds file.
type ScoringTable struct {
	Thresholds Thresholds `yaml:"thresholds"`
	Report     ReportText `yaml:"report"`
}

// DefaultThresholds returns the compiled-in threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlinkRateUnit:        BlinkPerMinute,
		CognitiveLoadFormula: CognitiveLoadVariability,
		BlinkBaseline:        15,
		MotorCollisionFloor:  30,
		ReactionTime: ReactionTimeBounds{
			ShortMs:   150,
			LongMs:    2000,
			FastestMs: 150,
			SlowestMs: 3000,
		},
		Defaults: InputDefaults{
			BlinkRate:         15,
			AvgFixationMs:     250,
			GazeOnScreenPct:   85,
			AttentionScore:    50,
			StressScore:       25,
			MemoryAccuracyPct: 85,
		},
		ADHD: ADHDThresholds{
			RTCV:                 Check{Threshold: 0.6, Points: 30},
			ShortRTRatePct:       Check{Threshold: 10, Points: 25},
			InhibitoryErrorRatio: Check{Threshold: 0.05, Points: 25},
			BlinkRatePerMin:      Check{Threshold: 25, Points: 20},
			HighEvidence:         3,
			ModerateEvidence:     2,
		},
		PTSD: PTSDThresholds{
			StressHigh:            Check{Threshold: 40, Points: 40},
			StressModerate:        Check{Threshold: 25, Points: 20},
			GazeOnScreenPct:       Check{Threshold: 70, Points: 15},
			DistressTrialFraction: Check{Threshold: 0.20, Points: 10},
			DistressBlinkCount:    2,
			DistressGazePct:       60,
		},
		Alzheimers: AlzheimersThresholds{
			AvgRTMs:            Check{Threshold: 2000, Points: 35},
			MemoryAccuracyPct:  Check{Threshold: 70, Points: 35},
			GazeOnScreenPct:    Check{Threshold: 80, Points: 20},
			HighEvidence:       2,
			HighConfidence:     50,
			ModerateEvidence:   1,
			ModerateConfidence: 25,
		},
	}
}

// DefaultReportText returns the built-in recommendation and limitation text.
func DefaultReportText() ReportText {
	return ReportText{
		Recommendations: []string{
			"Share this screening summary with a qualified clinician before drawing any conclusions.",
			"Repeat the assessment at a similar time of day to check whether results are stable.",
			"Ensure adequate rest and a quiet, well-lit environment for future sessions.",
			"Track results over several sessions rather than relying on a single run.",
		},
		Limitations: []string{
			"This is a screening tool and does not provide a medical diagnosis.",
			"Scores are derived from fixed thresholds that have not been clinically validated.",
			"Webcam-based blink and gaze telemetry is best-effort and sensitive to lighting and camera placement.",
			"Missing inputs are replaced with population defaults, which lowers the reliability of affected scores.",
		},
	}
}

// DefaultScoringTable returns the compiled-in thresholds and report text.
func DefaultScoringTable() ScoringTable {
	return ScoringTable{Thresholds: DefaultThresholds(), Report: DefaultReportText()}
}

// LoadScoringTable reads a thresholds YAML file. Keys missing from the file
// keep their compiled-in defaults.
func LoadScoringTable(path string) (*ScoringTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	table := DefaultScoringTable()
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thresholds YAML: %w", err)
	}
	if err := table.Thresholds.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate rejects unknown conventions and nonsensical bounds.
func (t Thresholds) Validate() error {
	switch t.BlinkRateUnit {
	case BlinkPerMinute, BlinkPerSession:
	default:
		return fmt.Errorf("thresholds: unknown blink_rate_unit %q", t.BlinkRateUnit)
	}
	switch t.CognitiveLoadFormula {
	case CognitiveLoadVariability, CognitiveLoadComposite:
	default:
		return fmt.Errorf("thresholds: unknown cognitive_load_formula %q", t.CognitiveLoadFormula)
	}
	if t.ReactionTime.SlowestMs <= t.ReactionTime.FastestMs {
		return fmt.Errorf("thresholds: reaction_time.slowest_ms (%v) must exceed fastest_ms (%v)",
			t.ReactionTime.SlowestMs, t.ReactionTime.FastestMs)
	}
	if t.MotorCollisionFloor <= 0 {
		return fmt.Errorf("thresholds: motor_collision_floor must be positive")
	}
	if t.BlinkBaseline <= 0 {
		return fmt.Errorf("thresholds: blink_baseline must be positive")
	}
	return nil
}
