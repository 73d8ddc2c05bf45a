package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"cryptoadvisor/internal/domain"
	"cryptoadvisor/internal/services/promptbuilder"
)

const (
	defaultLLMTimeout    = 60 * time.Second
	defaultLLMMaxElapsed = 2 * time.Minute
	defaultTemperature   = 0.3
	defaultMaxTokens     = 2048
)

// Advisor defines the interface for obtaining a reasoning agent verdict.
type Advisor interface {
	// GetRecommendation sends the assembled context to the LLM and returns
	// its validated recommendation.
	GetRecommendation(ctx context.Context, agentCtx domain.AgentContext,
		volume domain.VolumeAnalysis, trend domain.TrendDirection) (*domain.Recommendation, error)
}

// OpenAICompatibleClient talks to any OpenAI-compatible chat completion API.
type OpenAICompatibleClient struct {
	apiURL        string
	apiKey        string
	model         string
	httpClient    *http.Client
	promptBuilder *promptbuilder.PromptBuilder
}

// NewOpenAICompatibleClient creates a new client for OpenAI-compatible APIs.
func NewOpenAICompatibleClient(apiURL, apiKey, model string, promptBuilder *promptbuilder.PromptBuilder) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		apiURL:        apiURL,
		apiKey:        apiKey,
		model:         model,
		promptBuilder: promptBuilder,
		httpClient: &http.Client{
			Timeout: defaultLLMTimeout,
		},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// GetRecommendation builds prompts, sends a chat request to the LLM API and
// parses the response into a validated recommendation.
func (c *OpenAICompatibleClient) GetRecommendation(ctx context.Context, agentCtx domain.AgentContext,
	volume domain.VolumeAnalysis, trend domain.TrendDirection) (*domain.Recommendation, error) {

	if c.apiKey == "" {
		return nil, errors.New("LLM API key is empty")
	}

	userPrompt := c.promptBuilder.BuildUserPrompt(agentCtx, volume, trend)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: promptbuilder.SystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "marshal chat request")
	}

	var content string
	operation := func() error {
		content, err = c.complete(ctx, payload)
		return err
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = defaultLLMMaxElapsed

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, errors.Wrap(err, "LLM request failed after retries")
	}

	rec, err := domain.NewRecommendation(content)
	if err != nil {
		return nil, errors.Wrap(err, "invalid LLM recommendation")
	}

	return rec, nil
}

func (c *OpenAICompatibleClient) complete(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(errors.Wrap(err, "create request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read response body")
	}

	if resp.StatusCode != http.StatusOK {
		err := errors.Errorf("LLM API returned status %d: %s", resp.StatusCode, body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", errors.Wrap(err, "unmarshal chat response")
	}
	if chatResp.Error != nil {
		return "", errors.Errorf("LLM API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", errors.New("empty LLM response")
	}

	return chatResp.Choices[0].Message.Content, nil
}
