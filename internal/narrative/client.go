package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/models"
)

// ErrDisabled is returned by New when no API key is configured.
var ErrDisabled = errors.New("narrative model disabled: no API key configured")

// Result is what a model produced for one report.
type Result struct {
	AIReport  json.RawMessage
	Narrative string
}

// Generator writes a narrative for an assembled report.
type Generator interface {
	Generate(ctx context.Context, report *models.Report, session json.RawMessage) (*Result, error)
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	apiKey      string
	model       string
	temperature float64
}

func New(conf config.NarrativeConfig) (*Client, error) {
	if strings.TrimSpace(conf.APIKey) == "" {
		return nil, ErrDisabled
	}
	return &Client{
		httpClient:  &http.Client{},
		endpoint:    conf.Endpoint,
		apiKey:      conf.APIKey,
		model:       conf.Model,
		temperature: conf.Temperature,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = `You review results from browser-based cognitive screening games.
You never diagnose. Reply with a fenced json code block containing a report object
with exactly these keys: reportId, sessionId, userId, gameType, timestamp,
computedMetrics, domainScores, riskFlags, recommendations, limitations, fallbacks.
After the code block write a short plain-language summary for the user.`

// Generate sends the computed report and the raw session. The request is
// bound to ctx; callers set the deadline.
func (c *Client) Generate(ctx context.Context, report *models.Report, session json.RawMessage) (*Result, error) {
	computed, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	prompt := fmt.Sprintf("Computed report:\n%s\n\nRaw session:\n%s", computed, session)
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("no response choices returned")
	}

	return ParseContent(parsed.Choices[0].Message.Content)
}

var jsonBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")

// ParseContent splits a model reply into its json block and free text. A
// reply without a valid json block is an error.
func ParseContent(content string) (*Result, error) {
	loc := jsonBlock.FindStringSubmatchIndex(content)
	if loc == nil {
		return nil, errors.New("model reply has no json block")
	}

	block := strings.TrimSpace(content[loc[2]:loc[3]])
	if !json.Valid([]byte(block)) {
		return nil, errors.New("model reply json block is not valid JSON")
	}

	text := strings.TrimSpace(content[:loc[0]] + "\n" + content[loc[1]:])
	return &Result{AIReport: json.RawMessage(block), Narrative: text}, nil
}

// Source values stored next to a narrative.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Outcome is the narrative that gets stored, whichever path produced it.
type Outcome struct {
	AIReport  json.RawMessage
	Narrative string
	Source    string
	Err       error
}

// Narrator applies a timeout to the generator and falls back to a plain
// summary when it is missing or fails.
type Narrator struct {
	gen      Generator
	timeout  time.Duration
	fallback func(*models.Report) string
}

// NewNarrator accepts a nil generator, in which case every call falls back.
func NewNarrator(gen Generator, timeout time.Duration, fallback func(*models.Report) string) *Narrator {
	return &Narrator{gen: gen, timeout: timeout, fallback: fallback}
}

func (n *Narrator) Narrate(ctx context.Context, report *models.Report, session json.RawMessage) Outcome {
	if n.gen == nil {
		return Outcome{Narrative: n.fallback(report), Source: SourceFallback, Err: ErrDisabled}
	}

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	res, err := n.gen.Generate(ctx, report, session)
	if err != nil {
		return Outcome{Narrative: n.fallback(report), Source: SourceFallback, Err: err}
	}
	return Outcome{AIReport: res.AIReport, Narrative: res.Narrative, Source: SourceModel}
}
