package metrics

import (
	"strings"
	"testing"
)

const validSession = `{
	"sessionId": "sess-1",
	"userId": "user-1",
	"gameType": "ptsd",
	"createdAt": "2026-03-14T09:00:00Z",
	"durationSec": 180,
	"gameMetrics": {"totalTrials": 10, "correctTrials": 8, "averageReactionTime": 540},
	"visionMetrics": {"stressScore": 30},
	"trial_results": [{"trial_id": 1, "reaction_time_ms": 500, "correct": true}]
}`

func TestValidateAcceptsCompleteSession(t *testing.T) {
	session, errs := Validate([]byte(validSession))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if session.SessionID != "sess-1" || session.GameType != "ptsd" {
		t.Errorf("decoded session = %+v", session)
	}
	if session.CreatedAt == nil {
		t.Error("createdAt was not decoded")
	}
	if session.Vision.StressScore == nil || *session.Vision.StressScore != 30 {
		t.Error("stressScore was not decoded")
	}
	if session.Vision.BlinkRate != nil {
		t.Error("absent blinkRate should stay nil")
	}
}

func TestValidateReportsEveryMissingField(t *testing.T) {
	_, errs := Validate([]byte(`{"sessionId": "s", "visionMetrics": {}}`))
	want := []string{"Missing gameMetrics", "Missing trial_results"}
	if len(errs) != len(want) {
		t.Fatalf("errors = %v, want %v", errs, want)
	}
	for i := range want {
		if errs[i] != want[i] {
			t.Errorf("errors[%d] = %q, want %q", i, errs[i], want[i])
		}
	}
}

func TestValidateRequiredGameMetrics(t *testing.T) {
	raw := `{"sessionId": "s", "gameMetrics": {"correctTrials": 1, "averageReactionTime": null},
		"visionMetrics": {}, "trial_results": []}`
	_, errs := Validate([]byte(raw))
	want := []string{"Missing gameMetrics.totalTrials", "Missing gameMetrics.averageReactionTime"}
	if len(errs) != len(want) {
		t.Fatalf("errors = %v, want %v", errs, want)
	}
	for i := range want {
		if errs[i] != want[i] {
			t.Errorf("errors[%d] = %q, want %q", i, errs[i], want[i])
		}
	}
}

func TestValidateMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"sessionId": `},
		{"array", `[1, 2, 3]`},
		{"null", `null`},
		{"string", `"session"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, errs := Validate([]byte(tt.raw))
			if session != nil {
				t.Fatal("expected no session")
			}
			if len(errs) != 1 || !strings.HasPrefix(errs[0], "Invalid JSON") {
				t.Errorf("errors = %v, want a single parse error", errs)
			}
		})
	}
}

func TestValidateValueChecks(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "wrong type",
			raw: `{"sessionId": "s", "gameMetrics": {"totalTrials": "ten", "correctTrials": 1, "averageReactionTime": 1},
				"visionMetrics": {}, "trial_results": []}`,
			want: "Invalid gameMetrics.totalTrials",
		},
		{
			name: "negative counter",
			raw: `{"sessionId": "s", "gameMetrics": {"totalTrials": -1, "correctTrials": 1, "averageReactionTime": 1},
				"visionMetrics": {}, "trial_results": []}`,
			want: "Invalid gameMetrics.totalTrials: must be >= 0",
		},
		{
			name: "unknown game",
			raw: `{"sessionId": "s", "gameType": "chess", "gameMetrics": {"totalTrials": 1, "correctTrials": 1, "averageReactionTime": 1},
				"visionMetrics": {}, "trial_results": []}`,
			want: "Invalid gameType",
		},
		{
			name: "blank session id",
			raw: `{"sessionId": "  ", "gameMetrics": {"totalTrials": 1, "correctTrials": 1, "averageReactionTime": 1},
				"visionMetrics": {}, "trial_results": []}`,
			want: "Invalid sessionId",
		},
		{
			name: "bad timestamp",
			raw: `{"sessionId": "s", "createdAt": "yesterday", "gameMetrics": {"totalTrials": 1, "correctTrials": 1, "averageReactionTime": 1},
				"visionMetrics": {}, "trial_results": []}`,
			want: "Invalid createdAt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Validate([]byte(tt.raw))
			if len(errs) == 0 {
				t.Fatal("expected validation errors")
			}
			if !strings.HasPrefix(errs[0], tt.want) {
				t.Errorf("errors[0] = %q, want prefix %q", errs[0], tt.want)
			}
		})
	}
}

func TestValidationErrorsJoin(t *testing.T) {
	errs := ValidationErrors{"Missing gameMetrics", "Missing trial_results"}
	if got := errs.Error(); got != "Missing gameMetrics; Missing trial_results" {
		t.Errorf("Error() = %q", got)
	}
}
