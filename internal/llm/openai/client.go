package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"jobtrack-backend/internal/llm"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	MaxTokens      int            `json:"max_completion_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateStructured runs the prompt and returns valid JSON output. When the
// first completion is not valid JSON, a single repair round-trip asks the
// model to fix its own output.
func (c *Client) GenerateStructured(ctx context.Context, req llm.StructuredRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	raw, usage, err := c.completeOnce(ctx, req, req.Prompt)
	if err != nil {
		return nil, err
	}
	logUsage(c.model, req.Shape, usage)

	if json.Valid(raw) {
		return raw, nil
	}

	fixPrompt := buildFixPrompt(req.Shape, raw)
	raw, usage, err = c.completeOnce(ctx, req, fixPrompt)
	if err != nil {
		return nil, err
	}
	logUsage(c.model, req.Shape, usage)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON from OpenAI")
	}
	return raw, nil
}

func (c *Client) completeOnce(ctx context.Context, req llm.StructuredRequest, prompt string) (json.RawMessage, *chatUsage, error) {
	temp := req.Temperature
	reqBody := chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: req.MaxTokens,
		ResponseFormat: &responseFormat{
			Type: "json_object",
		},
	}
	reqBody.Temperature = &temp
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return nil, nil, fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, nil, fmt.Errorf("openai response empty content")
	}
	return json.RawMessage(content), toUsage(parsed.Usage), nil
}

func buildFixPrompt(shape string, raw json.RawMessage) string {
	var b strings.Builder
	b.WriteString("The following output was supposed to be a single valid JSON object")
	if shape != "" {
		fmt.Fprintf(&b, " (%s)", shape)
	}
	b.WriteString(" but is malformed. Return the corrected JSON object only, with no commentary.\n\n")
	b.Write(raw)
	return b.String()
}

type chatUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func toUsage(raw *struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}) *chatUsage {
	if raw == nil {
		return nil
	}
	return &chatUsage{
		PromptTokens:     raw.PromptTokens,
		CompletionTokens: raw.CompletionTokens,
		TotalTokens:      raw.TotalTokens,
	}
}

func logUsage(model, shape string, usage *chatUsage) {
	if usage == nil {
		log.Printf("llm response model=%s shape=%s", model, shape)
		return
	}
	log.Printf("llm response model=%s shape=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, shape, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}
