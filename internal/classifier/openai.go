package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/model"
)

const (
	completionTemperature = 0.3
	completionMaxTokens   = 150
	completionTimeout     = 30 * time.Second
)

const promptTemplate = `You are an IT maintenance assistant. Analyze this email and classify the issue.

Email Subject: %s
Email Body: %s

Classify into ONE category:
- Hardware (physical equipment problems)
- Software (application/program issues)
- Network (connectivity problems)
- User Error (user mistakes)
- Security (security threats)
- Other

Priority: High, Medium, or Low

Respond EXACTLY like this:
Category: [category]
Priority: [priority]
Summary: [one sentence summary]`

// OpenAIClassifier classifies emails with a chat-completion endpoint.
// Without an API key it runs in a documented degraded mode and answers with
// the deterministic fallback, never touching the network.
type OpenAIClassifier struct {
	apiKey  string
	apiBase string
	model   string
	client  *http.Client
}

// NewOpenAIClassifier creates a classifier from configuration.
func NewOpenAIClassifier(cfg *config.OpenAIConfig) *OpenAIClassifier {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = "https://api.openai.com/v1"
	}
	modelID := cfg.Model
	if modelID == "" {
		modelID = "gpt-4o-mini"
	}
	return &OpenAIClassifier{
		apiKey:  cfg.APIKey,
		apiBase: apiBase,
		model:   modelID,
		client:  &http.Client{Timeout: completionTimeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify sends subject and the first part of the body to the model and
// parses the three labeled fields out of the reply. Any failure, or any
// missing field, degrades to that field's default.
func (c *OpenAIClassifier) Classify(ctx context.Context, subject, body string) model.Classification {
	if c.apiKey == "" {
		return Fallback(subject)
	}

	prompt := fmt.Sprintf(promptTemplate, subject, model.Truncate(body, model.MaxBodyChars))

	text, err := c.complete(ctx, prompt)
	if err != nil {
		logrus.Warnf("Classification failed, using fallback: %v", err)
		return Fallback(subject)
	}

	return ParseClassification(text, subject)
}

// complete performs one chat-completion call and returns the reply text.
func (c *OpenAIClassifier) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return cr.Choices[0].Message.Content, nil
}
