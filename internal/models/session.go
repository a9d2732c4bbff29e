package models

import "time"

// GameType identifies which mini-game family produced a session.
type GameType string

const (
	GameNeuroBalance GameType = "neurobalance"
	GameADHD         GameType = "NeuroMatrix-ADHD"
	GameTyping       GameType = "typing"
	GamePTSD         GameType = "ptsd"
)

// Valid reports whether g is one of the known game types.
func (g GameType) Valid() bool {
	switch g {
	case GameNeuroBalance, GameADHD, GameTyping, GamePTSD:
		return true
	}
	return false
}

// Session is one completed assessment run as submitted by the client.
type Session struct {
	SessionID    string        `json:"sessionId"`
	UserID       string        `json:"userId"`
	GameType     GameType      `json:"gameType,omitempty"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
	DurationSec  float64       `json:"durationSec"`
	Game         GameMetrics   `json:"gameMetrics"`
	Vision       VisionMetrics `json:"visionMetrics"`
	TrialResults []TrialResult `json:"trial_results"`
}

// GameMetrics are the aggregate counters reported by the game UI.
// Pointer fields are optional and resolved to defaults during scoring.
type GameMetrics struct {
	TotalTrials         float64  `json:"totalTrials"`
	CorrectTrials       float64  `json:"correctTrials"`
	AverageReactionTime float64  `json:"averageReactionTime"`
	InhibitoryErrors    *float64 `json:"inhibitoryErrors,omitempty"`
	MemoryErrors        *float64 `json:"memoryErrors,omitempty"`
	MazeCollisions      *float64 `json:"mazeCollisions,omitempty"`
	ResponseConsistency *float64 `json:"responseConsistency,omitempty"`
}

// VisionMetrics are the webcam telemetry summaries. All fields are optional.
type VisionMetrics struct {
	BlinkRate       *float64 `json:"blinkRate,omitempty"`
	AvgFixationMs   *float64 `json:"avgFixationMs,omitempty"`
	GazeOnScreenPct *float64 `json:"gazeOnScreenPct,omitempty"`
	AttentionScore  *float64 `json:"attentionScore,omitempty"`
	StressScore     *float64 `json:"stressScore,omitempty"`
}

// TrialResult is a single trial record. Order within the session matters only
// for trend comparisons.
type TrialResult struct {
	TrialID        any             `json:"trial_id"`
	ReactionTimeMs float64         `json:"reaction_time_ms"`
	Correct        bool            `json:"correct"`
	Stimulus       any             `json:"stimulus,omitempty"`
	VisionSnapshot *VisionSnapshot `json:"vision_snapshot,omitempty"`
}

// VisionSnapshot is the per-trial slice of webcam telemetry.
type VisionSnapshot struct {
	BlinkCount      *float64 `json:"blink_count,omitempty"`
	GazeOnScreenPct *float64 `json:"gaze_on_screen_pct,omitempty"`
}

// EffectiveGameType returns the session's game type or the default.
func (s *Session) EffectiveGameType() GameType {
	if s.GameType == "" {
		return GameNeuroBalance
	}
	return s.GameType
}
