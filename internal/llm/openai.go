package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smartwealth/advisor/internal/models"
)

// Config holds OpenAI API usage parameters.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns sensible defaults for advisory calls.
func DefaultConfig() Config {
	return Config{
		Model:       openai.GPT4oMini,
		Temperature: 0.0, // deterministic output for classification and extraction
		MaxTokens:   1000,
		Timeout:     30 * time.Second,
	}
}

// ConfigFromEnv builds config from environment variables on top of the
// defaults. An empty OPENAI_API_KEY means the mock collaborator should
// be used instead.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")

	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.Model = model
	}
	if tempStr := os.Getenv("OPENAI_TEMPERATURE"); tempStr != "" {
		if temp, err := strconv.ParseFloat(tempStr, 32); err == nil {
			cfg.Temperature = float32(temp)
		}
	}
	if timeoutStr := os.Getenv("OPENAI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if secs, err := strconv.Atoi(timeoutStr); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

// Recorder observes collaborator calls for metrics/telemetry.
type Recorder interface {
	RecordCall(call string, duration time.Duration, err error)
}

// OpenAIClient implements Collaborator against the OpenAI chat API.
type OpenAIClient struct {
	client   *openai.Client
	config   Config
	logger   *slog.Logger
	recorder Recorder
}

// NewOpenAIClient creates an OpenAI-backed collaborator. recorder may be
// nil.
func NewOpenAIClient(cfg Config, logger *slog.Logger, recorder Recorder) *OpenAIClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIClient{
		client:   openai.NewClient(cfg.APIKey),
		config:   cfg,
		logger:   logger,
		recorder: recorder,
	}
}

// chat performs one completion with retry/backoff on rate limits.
// jsonMode requests the JSON response format supported by gpt-4o-class
// models.
func (c *OpenAIClient) chat(ctx context.Context, call, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if jsonMode {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	const maxRetries = 3
	baseDelay := 1 * time.Second

	var resp openai.ChatCompletionResponse
	var err error

	start := time.Now()
	for attempt := 0; attempt < maxRetries; attempt++ {
		apiCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		resp, err = c.client.CreateChatCompletion(apiCtx, request)
		cancel()

		if err == nil {
			break
		}

		errStr := err.Error()
		rateLimited := strings.Contains(errStr, "429") ||
			strings.Contains(errStr, "Too Many Requests") ||
			strings.Contains(errStr, "Rate limit")
		if !rateLimited || attempt == maxRetries-1 {
			break
		}

		delay := baseDelay*time.Duration(1<<uint(attempt)) + time.Duration(rand.Intn(500))*time.Millisecond
		c.logger.Warn("rate limited, retrying with backoff",
			"call", call,
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds())
		time.Sleep(delay)
	}

	if c.recorder != nil {
		c.recorder.RecordCall(call, time.Since(start), err)
	}

	if err != nil {
		return "", fmt.Errorf("openai %s call failed: %w", call, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices from model %s", c.config.Model)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response from model %s (finish_reason: %s)",
			c.config.Model, resp.Choices[0].FinishReason)
	}
	return content, nil
}

// ClassifyIntent implements Collaborator.
func (c *OpenAIClient) ClassifyIntent(ctx context.Context, query string) models.IntentResult {
	raw, err := c.chat(ctx, "classify_intent", intentSystemPrompt, buildIntentPrompt(query), true)
	if err != nil {
		c.logger.Warn("intent classification failed, using fallback", "error", err)
		return fallbackIntent(fmt.Sprintf("Fallback due to model error: %v", err))
	}

	var result models.IntentResult
	if err := decodeJSON(raw, &result); err != nil || !result.Intent.Valid() {
		c.logger.Warn("intent response unparsable, using fallback", "error", err, "raw", raw)
		return fallbackIntent("Fallback due to unparsable model response")
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return result
}

// ExtractProfile implements Collaborator.
func (c *OpenAIClient) ExtractProfile(ctx context.Context, query string) models.UserProfile {
	raw, err := c.chat(ctx, "extract_profile", profileSystemPrompt, buildProfilePrompt(query), true)
	if err != nil {
		c.logger.Warn("profile extraction failed, using empty profile", "error", err)
		return models.UserProfile{}
	}

	var profile models.UserProfile
	if err := decodeJSON(raw, &profile); err != nil {
		c.logger.Warn("profile response unparsable, using empty profile", "error", err, "raw", raw)
		return models.UserProfile{}
	}

	// A malformed enum value from the model degrades that single field,
	// not the whole profile.
	if profile.RiskTolerance != nil && !profile.RiskTolerance.Valid() {
		profile.RiskTolerance = nil
	}
	if err := profile.Validate(); err != nil {
		c.logger.Warn("extracted profile invalid, using empty profile", "error", err)
		return models.UserProfile{}
	}
	return profile
}

// ResolveCompany implements Collaborator.
func (c *OpenAIClient) ResolveCompany(ctx context.Context, query string) models.CompanyQuery {
	raw, err := c.chat(ctx, "resolve_company", companySystemPrompt, fmt.Sprintf("User query: %q", query), true)
	if err != nil {
		c.logger.Warn("company resolution failed, assuming profile intent", "error", err)
		return models.CompanyQuery{Intent: "profile"}
	}

	var result models.CompanyQuery
	if err := decodeJSON(raw, &result); err != nil {
		c.logger.Warn("company response unparsable, assuming profile intent", "error", err, "raw", raw)
		return models.CompanyQuery{Intent: "profile"}
	}
	if result.Intent != "company" {
		result.Intent = "profile"
		result.CompanyName = nil
	}
	return result
}

// ScoreHeadline implements Collaborator (and sentiment.HeadlineClassifier).
func (c *OpenAIClient) ScoreHeadline(ctx context.Context, asset models.AssetClass, headline string) models.HeadlineScore {
	raw, err := c.chat(ctx, "score_headline", sentimentSystemPrompt, buildSentimentPrompt(asset, headline), true)
	if err != nil {
		c.logger.Warn("headline scoring failed, using neutral", "asset", asset, "error", err)
		return neutralScore()
	}

	var score models.HeadlineScore
	if err := decodeJSON(raw, &score); err != nil {
		c.logger.Warn("headline score unparsable, using neutral", "asset", asset, "error", err, "raw", raw)
		return neutralScore()
	}

	switch score.Label {
	case models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral:
	default:
		return neutralScore()
	}
	if score.Score < 0 || score.Score > 1 {
		return neutralScore()
	}
	return score
}

// SuggestInvestmentAmount implements Collaborator.
func (c *OpenAIClient) SuggestInvestmentAmount(ctx context.Context, query string, profile models.UserProfile) float64 {
	raw, err := c.chat(ctx, "suggest_amount", "Only return a numeric value.", buildAmountPrompt(query, profile), false)
	if err != nil {
		c.logger.Warn("amount suggestion failed, using default", "error", err)
		return fallbackAmount
	}

	amount, ok := extractNumber(raw)
	if !ok || amount <= 0 {
		c.logger.Warn("amount response unparsable, using default", "raw", raw)
		return fallbackAmount
	}
	return amount
}

// GenerateNarrative implements Collaborator.
func (c *OpenAIClient) GenerateNarrative(ctx context.Context, profile models.UserProfile, base, adjusted models.Allocation, rationale string) string {
	raw, err := c.chat(ctx, "generate_narrative", narrativeSystemPrompt,
		buildNarrativePrompt(profile, base, adjusted, rationale), false)
	if err != nil {
		c.logger.Warn("narrative generation failed", "error", err)
		return fmt.Sprintf("[Error generating final response: %v]", err)
	}
	return raw
}
