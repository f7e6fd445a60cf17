package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	cb "github.com/sony/gobreaker"
	"github.com/warungops/warungops/internal/models"
)

// Completion is the parsed body of one successful model call.
type Completion struct {
	Data    json.RawMessage
	Elapsed time.Duration
}

// Completer is the single narrow contract every enhancer goes through. A
// failed call is an expected condition, not an error to propagate: callers
// fall back to their deterministic baseline.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error)
}

type Client struct {
	cfg     models.AIConfig
	http    *http.Client
	breaker *cb.CircuitBreaker
}

func NewClient(cfg models.AIConfig) *Client {
	st := cb.Settings{Name: "ai-overlay"}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: cb.NewCircuitBreaker(st),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request and returns the JSON payload
// embedded in the reply. The call is time-boxed by the configured timeout;
// the circuit breaker keeps a dead upstream from delaying every request.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (*Completion, error) {
	started := time.Now()

	result, err := c.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		body, err := json.Marshal(chatRequest{
			Model: c.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: userPrompt},
			},
			Temperature: c.cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("ai overlay returned status %d", resp.StatusCode)
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var parsed chatResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("malformed completion response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return nil, fmt.Errorf("completion response had no choices")
		}

		data := ExtractJSON(parsed.Choices[0].Message.Content)
		if data == nil {
			return nil, fmt.Errorf("no JSON payload in completion")
		}
		return data, nil
	})
	if err != nil {
		log.Debug().Err(err).Dur("elapsed", time.Since(started)).Msg("ai overlay call failed")
		return nil, err
	}

	return &Completion{
		Data:    result.(json.RawMessage),
		Elapsed: time.Since(started),
	}, nil
}

// ExtractJSON pulls the first JSON object or array out of a model reply,
// tolerating markdown code fences and prose around it.
func ExtractJSON(content string) json.RawMessage {
	content = strings.TrimSpace(content)
	if fenced := strings.Index(content, "```"); fenced >= 0 {
		rest := content[fenced+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			content = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return nil
	}
	closing := "}"
	if content[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(content, closing)
	if end < start {
		return nil
	}
	candidate := content[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil
	}
	return json.RawMessage(candidate)
}
