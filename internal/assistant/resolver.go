package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkovalyov/focusaid/internal/models"
	"github.com/mkovalyov/focusaid/internal/utils"
)

const (
	quotaApologyPrefix = "I'm sorry, but there's an API quota limitation. Using simplified responses instead.\n\n"
	errorPrefix        = "I encountered an error while processing your request. Using simplified responses instead.\n\n"
	connectivityReply  = "I'm having trouble connecting to my brain. Please try again later."
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Resolver proxies a chat-completion API and degrades to the keyword
// classifier. It never fails outward: every failure path produces a valid
// assistant message.
type Resolver struct {
	apiKey      string
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	client      httpDoer
	logger      *zap.Logger
}

func NewResolver(cfg utils.OpenAIConfig, logger *zap.Logger) *Resolver {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		apiKey:      strings.TrimSpace(cfg.APIKey),
		endpoint:    endpoint,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type chatAPIRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float64          `json:"temperature"`
	MaxTokens   int              `json:"max_tokens"`
}

type chatAPIChoice struct {
	Index        int            `json:"index"`
	Message      models.Message `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type chatAPIResponse struct {
	ID      string          `json:"id"`
	Object  string          `json:"object"`
	Created int64           `json:"created"`
	Choices []chatAPIChoice `json:"choices"`
}

// Resolve produces the assistant reply for the given history. Without a
// configured credential it is a pure function of the last user message; with
// one it makes a single bounded call to the completion API and absorbs every
// failure into a degraded-but-valid reply.
func (r *Resolver) Resolve(ctx context.Context, history []models.Message) models.Message {
	if r.apiKey == "" {
		r.logger.Warn("no chat completion credential configured, using fallback responses")
		return models.Message{Role: "assistant", Content: Classify(lastUserContent(history))}
	}

	payload, err := json.Marshal(chatAPIRequest{
		Model:       r.model,
		Messages:    history,
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		r.logger.Error("marshal chat payload failed", zap.Error(err))
		return r.degradedReply(history)
	}

	endpoint := r.endpoint + "/chat/completions"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		r.logger.Error("create chat request failed", zap.Error(err))
		return r.degradedReply(history)
	}
	request.Header.Set("Authorization", "Bearer "+r.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := r.client.Do(request)
	if err != nil {
		r.logger.Error("chat completion call failed", zap.Error(err))
		return r.degradedReply(history)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		r.logger.Error("read chat response failed", zap.Error(err))
		return r.degradedReply(history)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		r.logger.Error("chat completion api error",
			zap.Int("status", response.StatusCode),
			zap.String("body", snippet(response.StatusCode, body)))

		if isQuotaError(body) {
			return models.Message{
				Role:    "assistant",
				Content: quotaApologyPrefix + Classify(lastUserContent(history)),
			}
		}
		return models.Message{Role: "assistant", Content: connectivityReply}
	}

	var apiResp chatAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		r.logger.Error("decode chat response failed", zap.Error(err))
		return r.degradedReply(history)
	}
	if len(apiResp.Choices) == 0 {
		r.logger.Error("chat response contained no choices")
		return r.degradedReply(history)
	}

	return apiResp.Choices[0].Message
}

func (r *Resolver) degradedReply(history []models.Message) models.Message {
	return models.Message{
		Role:    "assistant",
		Content: errorPrefix + Classify(lastUserContent(history)),
	}
}

// lastUserContent is the final entry's content iff its role is "user".
func lastUserContent(history []models.Message) string {
	if len(history) == 0 {
		return ""
	}
	last := history[len(history)-1]
	if last.Role != "user" {
		return ""
	}
	return last.Content
}

func isQuotaError(body []byte) bool {
	text := string(body)
	return strings.Contains(text, "quota") || strings.Contains(text, "insufficient_quota")
}

func snippet(statusCode int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(statusCode)
	}
	if len(text) > 256 {
		text = text[:256]
	}
	return text
}
