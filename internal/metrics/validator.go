package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// ValidationErrors lists every problem found in a submitted session.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

var requiredGameMetrics = []string{"totalTrials", "correctTrials", "averageReactionTime"}

// Validate checks a raw session document and decodes it. It never returns a
// partially validated session: either the session or the full error list.
func Validate(raw []byte) (*models.Session, ValidationErrors) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ValidationErrors{fmt.Sprintf("Invalid JSON: %v", err)}
	}
	if doc == nil {
		return nil, ValidationErrors{"Invalid JSON: session must be an object"}
	}

	var errs ValidationErrors

	if !present(doc, "sessionId") {
		errs = append(errs, "Missing sessionId")
	}

	if !present(doc, "gameMetrics") {
		errs = append(errs, "Missing gameMetrics")
	} else {
		var game map[string]json.RawMessage
		if err := json.Unmarshal(doc["gameMetrics"], &game); err != nil {
			errs = append(errs, "Invalid gameMetrics: must be an object")
		} else {
			for _, key := range requiredGameMetrics {
				if !present(game, key) {
					errs = append(errs, "Missing gameMetrics."+key)
				}
			}
		}
	}

	if !present(doc, "visionMetrics") {
		errs = append(errs, "Missing visionMetrics")
	}
	if !present(doc, "trial_results") {
		errs = append(errs, "Missing trial_results")
	}

	if len(errs) > 0 {
		return nil, errs
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, ValidationErrors{describeDecodeError(err)}
	}

	errs = append(errs, checkValues(&session)...)
	if len(errs) > 0 {
		return nil, errs
	}
	return &session, nil
}

func present(doc map[string]json.RawMessage, key string) bool {
	v, ok := doc[key]
	if !ok {
		return false
	}
	return !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "session"
		}
		return fmt.Sprintf("Invalid %s: expected %s, got %s", field, typeErr.Type, typeErr.Value)
	}
	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return "Invalid createdAt: must be an RFC3339 timestamp"
	}
	return fmt.Sprintf("Invalid session: %v", err)
}

func checkValues(s *models.Session) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(s.SessionID) == "" {
		errs = append(errs, "Invalid sessionId: must be a non-empty string")
	}
	if s.GameType != "" && !s.GameType.Valid() {
		errs = append(errs, fmt.Sprintf("Invalid gameType: %q is not a known game", s.GameType))
	}
	if s.DurationSec < 0 {
		errs = append(errs, "Invalid durationSec: must be >= 0")
	}

	nonNegative := []struct {
		path  string
		value *float64
	}{
		{"gameMetrics.totalTrials", &s.Game.TotalTrials},
		{"gameMetrics.correctTrials", &s.Game.CorrectTrials},
		{"gameMetrics.averageReactionTime", &s.Game.AverageReactionTime},
		{"gameMetrics.inhibitoryErrors", s.Game.InhibitoryErrors},
		{"gameMetrics.memoryErrors", s.Game.MemoryErrors},
		{"gameMetrics.mazeCollisions", s.Game.MazeCollisions},
	}
	for _, f := range nonNegative {
		if f.value != nil && *f.value < 0 {
			errs = append(errs, fmt.Sprintf("Invalid %s: must be >= 0", f.path))
		}
	}
	return errs
}
