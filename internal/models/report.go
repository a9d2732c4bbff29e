package models

import "time"

// Reaction-time sources recorded in Metrics.RTSource.
const (
	RTSourceTrials  = "trial_results"
	RTSourceGame    = "gameMetrics"
	RTSourceMissing = "none"
)

// Metrics holds the statistics derived from a session. Values are unrounded.
type Metrics struct {
	AccuracyPct     float64 `json:"accuracy_pct"`
	AvgRTMs         float64 `json:"avg_rt_ms"`
	RTStdMs         float64 `json:"rt_std_ms"`
	RTCV            float64 `json:"rt_cv"`
	ShortRTRatePct  float64 `json:"short_rt_rate_pct"`
	LongRTRatePct   float64 `json:"long_rt_rate_pct"`
	BlinkRatePerMin float64 `json:"blink_rate_per_min"`
	GazeOnScreenPct float64 `json:"gaze_on_screen_pct"`
	FixationMeanMs  float64 `json:"fixation_mean_ms"`
	MazeCollisions  float64 `json:"maze_collisions"`
	RTTrendMs       float64 `json:"rt_trend_ms"`
	RTSampleSize    int     `json:"rt_sample_size"`
	RTSource        string  `json:"rt_source"`
}

// Domain names, in report order.
const (
	DomainAttention         = "attention"
	DomainInhibitoryControl = "inhibitoryControl"
	DomainProcessingSpeed   = "processingSpeed"
	DomainMotorControl      = "motorControl"
	DomainCognitiveLoad     = "cognitiveLoad"
	DomainMemory            = "memory"
	DomainNeuroBalance      = "neuroBalance"
	DomainStressManagement  = "stressManagement"
)

// Domains lists every domain name in report order.
var Domains = []string{
	DomainAttention,
	DomainInhibitoryControl,
	DomainProcessingSpeed,
	DomainMotorControl,
	DomainCognitiveLoad,
	DomainMemory,
	DomainNeuroBalance,
	DomainStressManagement,
}

// ValidDomain reports whether name is one of the eight domains.
func ValidDomain(name string) bool {
	for _, d := range Domains {
		if d == name {
			return true
		}
	}
	return false
}

// DomainScore is one 0-100 indicator together with the formula and inputs
// that produced it.
type DomainScore struct {
	Domain        string             `json:"domain"`
	Value         float64            `json:"value"`
	Formula       string             `json:"formula"`
	Inputs        map[string]float64 `json:"inputs"`
	LowerIsBetter bool               `json:"lowerIsBetter,omitempty"`
}

// RiskLevel is the screening bucket of a RiskFlag.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Rank orders levels so callers can find the highest one.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskHigh:
		return 2
	case RiskModerate:
		return 1
	}
	return 0
}

// Screened conditions.
const (
	ConditionADHD       = "ADHD"
	ConditionPTSD       = "PTSD"
	ConditionAlzheimers = "Alzheimers"
)

// Evidence is one triggered threshold check.
type Evidence struct {
	Path      string  `json:"path"`
	Value     float64 `json:"value"`
	Why       string  `json:"why"`
	Points    float64 `json:"points"`
	Defaulted bool    `json:"defaulted,omitempty"`
}

// RiskFlag is the screening result for one condition. It is not a diagnosis.
type RiskFlag struct {
	Condition  string     `json:"condition"`
	Level      RiskLevel  `json:"level"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence"`
}

// RiskFlags groups the three condition flags.
type RiskFlags struct {
	ADHD       RiskFlag `json:"ADHD"`
	PTSD       RiskFlag `json:"PTSD"`
	Alzheimers RiskFlag `json:"Alzheimers"`
}

// All returns the flags in report order.
func (r RiskFlags) All() []RiskFlag {
	return []RiskFlag{r.ADHD, r.PTSD, r.Alzheimers}
}

// Highest returns the most severe level across all conditions.
func (r RiskFlags) Highest() RiskLevel {
	return HighestLevel(r.All())
}

// HighestLevel returns the most severe level in flags, Low when empty.
func HighestLevel(flags []RiskFlag) RiskLevel {
	highest := RiskLow
	for _, f := range flags {
		if f.Level.Rank() > highest.Rank() {
			highest = f.Level
		}
	}
	return highest
}

// Report is the assembled scoring output. It is never mutated once built.
type Report struct {
	ReportID        string        `json:"reportId"`
	SessionID       string        `json:"sessionId"`
	UserID          string        `json:"userId"`
	GameType        GameType      `json:"gameType"`
	Timestamp       time.Time     `json:"timestamp"`
	ComputedMetrics Metrics       `json:"computedMetrics"`
	DomainScores    []DomainScore `json:"domainScores"`
	RiskFlags       []RiskFlag    `json:"riskFlags"`
	Recommendations []string      `json:"recommendations"`
	Limitations     []string      `json:"limitations"`
	Fallbacks       []string      `json:"fallbacks"`
}

// DomainValue looks up a domain score by name.
func (r *Report) DomainValue(domain string) (float64, bool) {
	for _, d := range r.DomainScores {
		if d.Domain == domain {
			return d.Value, true
		}
	}
	return 0, false
}
