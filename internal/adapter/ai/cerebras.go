package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yourusername/mlearn/internal/domain"
)

const (
	defaultCerebrasBaseURL = "https://api.cerebras.ai/v1"
	defaultModel           = "llama-3.3-70b" // Good balance of quality and speed
	defaultTimeout         = 30 * time.Second
	maxRetries             = 3
	maxQueryLength         = 2000
)

// CerebrasProvider implements the Provider interface for Cerebras AI.
type CerebrasProvider struct {
	apiKey      *domain.APIKey
	baseURL     string
	model       string
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
}

// NewCerebrasProvider creates a new Cerebras provider.
func NewCerebrasProvider(apiKey *domain.APIKey, config ProviderConfig) *CerebrasProvider {
	timeout := defaultTimeout
	if config.Timeout > 0 {
		timeout = time.Duration(config.Timeout) * time.Second
	}

	maxRetries := maxRetries
	if config.MaxRetries > 0 {
		maxRetries = config.MaxRetries
	}

	baseURL := defaultCerebrasBaseURL
	if config.BaseURL != "" {
		baseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	model := defaultModel
	if config.Model != "" {
		model = config.Model
	}

	return &CerebrasProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries:  maxRetries,
		backoffBase: time.Second,
	}
}

// GetName returns the provider name.
func (c *CerebrasProvider) GetName() string {
	return "cerebras"
}

// ValidateKey checks if the API key is valid.
func (c *CerebrasProvider) ValidateKey(ctx context.Context) error {
	// Simple validation by making a minimal API call
	reqBody := cerebrasRequest{
		Model: c.model,
		Messages: []message{
			{Role: "user", Content: "test"},
		},
		MaxCompletionTokens: 10,
	}

	_, err := c.makeRequest(ctx, reqBody)
	if err != nil {
		return fmt.Errorf("API key validation failed: %w", err)
	}

	return nil
}

// GenerateMicroagent asks the model for a microagent answering the user's query.
func (c *CerebrasProvider) GenerateMicroagent(ctx context.Context, request MicroagentRequest) (*MicroagentResponse, error) {
	if request.Repository == nil {
		return nil, domain.ErrNoRepository
	}
	if strings.TrimSpace(request.Query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	startTime := time.Now()
	reqBody := c.buildStructuredRequest(c.buildPrompt(request), c.maxTokens(request.APIKey))

	var resp *cerebrasResponse
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err = c.makeRequest(ctx, reqBody)
		if err == nil {
			break
		}

		var limitErr *FreeTierLimitError
		if errors.As(err, &limitErr) {
			return nil, limitErr
		}

		if attempt < c.maxRetries && isRetryableError(err) {
			delay := c.backoffBase * time.Duration(1<<uint(attempt)) // Exponential backoff
			slog.Debug("retrying AI request", "provider", c.GetName(), "attempt", attempt+1, "delay", delay, "err", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		return nil, fmt.Errorf("microagent generation failed after %d attempts: %w", attempt+1, err)
	}

	microagent, err := parseMicroagent(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return &MicroagentResponse{
		Microagent:       microagent,
		TokensUsed:       resp.Usage.TotalTokens,
		Model:            resp.Model,
		ProcessingTimeMs: int(time.Since(startTime).Milliseconds()),
	}, nil
}

func (c *CerebrasProvider) maxTokens(key *domain.APIKey) int {
	if key == nil {
		key = c.apiKey
	}
	if key == nil {
		return 1500
	}
	return key.MaxCompletionTokens()
}

// buildPrompt builds the learn prompt from the repository, branch and recent history.
func (c *CerebrasProvider) buildPrompt(request MicroagentRequest) string {
	var sb strings.Builder

	sb.WriteString("You are an expert software engineer writing an OpenHands microagent: ")
	sb.WriteString("a short markdown guide that teaches a coding agent how to work in one repository.\n\n")

	sb.WriteString(fmt.Sprintf("Repository: %s\n", request.Repository.FullName()))
	if request.Branch != "" {
		sb.WriteString(fmt.Sprintf("Branch: %s\n", request.Branch))
	}
	sb.WriteString("\n")

	if len(request.RecentLog) > 0 {
		sb.WriteString("Recent commits:\n")
		for _, subject := range request.RecentLog {
			sb.WriteString(fmt.Sprintf("- %s\n", subject))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Question: %s\n\n", truncateQuery(request.Query, maxQueryLength)))

	sb.WriteString("Provide:\n")
	sb.WriteString("1. A short name for the microagent\n")
	sb.WriteString("2. Its type: \"repo\" if it always applies, \"knowledge\" if it applies only when a trigger word appears\n")
	sb.WriteString("3. Trigger keywords (required for knowledge microagents)\n")
	sb.WriteString("4. The markdown content answering the question with concrete steps\n")

	return sb.String()
}

// buildStructuredRequest builds a Cerebras API request with JSON schema for structured output.
func (c *CerebrasProvider) buildStructuredRequest(prompt string, maxTokens int) cerebrasRequest {
	falseBool := false

	schema := microagentSchema{
		Type: "object",
		Properties: map[string]property{
			"name": {
				Type:        "string",
				Description: "Short kebab-case name for the microagent",
			},
			"type": {
				Type:        "string",
				Enum:        []string{string(domain.MicroagentRepo), string(domain.MicroagentKnowledge)},
				Description: "Activation style of the microagent",
			},
			"triggers": {
				Type:        "array",
				Items:       &property{Type: "string"},
				Description: "Keywords that activate a knowledge microagent",
			},
			"content": {
				Type:        "string",
				Description: "Markdown body of the microagent",
			},
		},
		Required:             []string{"name", "type", "triggers", "content"},
		AdditionalProperties: &falseBool,
	}

	return cerebrasRequest{
		Model: c.model,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   "microagent",
				Strict: true,
				Schema: schema,
			},
		},
		MaxCompletionTokens: maxTokens,
		Temperature:         ptrFloat(0.4),
	}
}

// makeRequest makes an API request to Cerebras.
func (c *CerebrasProvider) makeRequest(ctx context.Context, reqBody cerebrasRequest) (*cerebrasResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != nil {
		req.Header.Set("Authorization", "Bearer "+c.apiKey.Key())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseErrorResponse(resp.StatusCode, body)
	}

	var cerebrasResp cerebrasResponse
	if err := json.Unmarshal(body, &cerebrasResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &cerebrasResp, nil
}

// parseMicroagent parses the structured output into a Microagent.
func parseMicroagent(resp *cerebrasResponse) (*domain.Microagent, error) {
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, errors.New("empty response content")
	}

	var output struct {
		Name     string   `json:"name"`
		Type     string   `json:"type"`
		Triggers []string `json:"triggers"`
		Content  string   `json:"content"`
	}
	if err := json.Unmarshal([]byte(content), &output); err != nil {
		return nil, fmt.Errorf("failed to parse structured output: %w", err)
	}

	kind := domain.ParseMicroagentKind(output.Type)
	// A knowledge microagent without triggers would never load; keep it as repo-wide.
	if kind == domain.MicroagentKnowledge && len(output.Triggers) == 0 {
		kind = domain.MicroagentRepo
	}

	return domain.NewMicroagent(output.Name, kind, output.Triggers, output.Content)
}

// apiError is a non-200 response from the API.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Check for network errors and timeouts that lost their type
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "connection")
}

func parseErrorResponse(statusCode int, body []byte) error {
	// Try to parse error details
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	message := ""
	if err := json.Unmarshal(body, &errResp); err == nil {
		message = errResp.Error.Message
	}

	if statusCode == http.StatusTooManyRequests {
		if message == "" {
			message = "Rate limit reached. Please wait a moment or upgrade to a pro API key for higher limits."
		}
		return &FreeTierLimitError{
			Message:    message,
			RetryAfter: 60,
		}
	}

	if message == "" {
		// If we can't parse the error, return the raw body for debugging
		message = string(body)
		if len(message) > 500 {
			message = message[:500] + "..."
		}
	}
	return &apiError{StatusCode: statusCode, Message: message}
}

func ptrFloat(f float64) *float64 {
	return &f
}

// Wire types of the OpenAI-compatible chat completions API.

type cerebrasRequest struct {
	Model               string          `json:"model"`
	Messages            []message       `json:"messages"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string           `json:"name"`
	Strict bool             `json:"strict"`
	Schema microagentSchema `json:"schema"`
}

type microagentSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]property `json:"properties"`
	Required             []string            `json:"required"`
	AdditionalProperties *bool               `json:"additionalProperties,omitempty"`
}

type property struct {
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Items       *property `json:"items,omitempty"`
}

// cerebrasResponse keeps only the fields a microagent needs.
type cerebrasResponse struct {
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type choice struct {
	Message message `json:"message"`
}

// FreeTierLimitError represents a rate limit error for free tier users.
type FreeTierLimitError struct {
	Message    string
	RetryAfter int // Seconds to wait before retrying
}

func (e *FreeTierLimitError) Error() string {
	return e.Message
}

// truncateQuery keeps at most limit runes of query.
func truncateQuery(query string, limit int) string {
	if utf8.RuneCountInString(query) <= limit {
		return query
	}
	runes := []rune(query)
	return string(runes[:limit])
}
