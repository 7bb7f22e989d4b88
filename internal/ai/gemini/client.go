package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/talentscout/hiring-assistant/internal/ai"
	"github.com/talentscout/hiring-assistant/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// contentCaller is the slice of the genai models API the client depends on.
// Tests provide a fake implementation.
type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client adapts the Google GenAI SDK to the ai.Completer contract. Generation
// parameters are fixed at construction; callers treat the service as opaque.
type Client struct {
	models      contentCaller
	model       string
	maxTokens   int32
	temperature float32
	logger      *zap.Logger
}

// NewClient creates a Gemini-backed completer for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string, maxTokens int, temperature float64, log *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	if temperature < 0 || temperature > 2 {
		temperature = defaultTemperature
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		models:      client.Models,
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
		logger:      log.With(logger.CommonFields("gemini", model)...),
	}, nil
}

// Complete sends the prompt and returns the concatenated textual response.
// Failures come back as *ai.ServiceError with a classified kind.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.models == nil {
		return "", &ai.ServiceError{Kind: ai.KindDisabled, Err: errors.New("gemini client is not initialized")}
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", &ai.ServiceError{Kind: ai.KindInvalidArgument, Err: errors.New("prompt must not be empty")}
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
		Temperature:     genai.Ptr(c.temperature),
	}

	c.logger.Debug("gemini completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, 120)),
	)

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		classified := classify(err)
		c.logger.Warn("gemini completion failed",
			zap.String("kind", string(classified.Kind)),
			zap.Error(err),
		)
		return "", classified
	}

	output := extractText(resp)
	if output == "" {
		return "", &ai.ServiceError{Kind: ai.KindUnknown, Err: errors.New("gemini api returned empty response")}
	}

	c.logger.Debug("gemini completion response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", logger.TruncateForLog(output, 120)),
	)

	return output, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// classify maps genai API errors onto the engine's failure taxonomy.
func classify(err error) *ai.ServiceError {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &ai.ServiceError{Kind: ai.KindUnknown, Err: err}
	}

	message := strings.ToUpper(apiErr.Message)
	status := strings.ToUpper(apiErr.Status)

	switch {
	case strings.Contains(message, "SERVICE_DISABLED"),
		strings.Contains(message, "API HAS NOT BEEN USED"):
		return &ai.ServiceError{Kind: ai.KindDisabled, Err: err}
	case status == "PERMISSION_DENIED", apiErr.Code == http.StatusForbidden, apiErr.Code == http.StatusUnauthorized:
		return &ai.ServiceError{Kind: ai.KindPermissionDenied, Err: err}
	case status == "RESOURCE_EXHAUSTED", apiErr.Code == http.StatusTooManyRequests:
		return &ai.ServiceError{Kind: ai.KindQuotaExceeded, Err: err}
	case status == "INVALID_ARGUMENT", apiErr.Code == http.StatusBadRequest:
		return &ai.ServiceError{Kind: ai.KindInvalidArgument, Err: err}
	default:
		return &ai.ServiceError{Kind: ai.KindUnknown, Err: err}
	}
}
