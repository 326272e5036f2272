package deepseek

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-screener/internal/analysis"
	"resume-screener/internal/llm"
	"resume-screener/internal/shared/telemetry"
)

const (
	DefaultBaseURL     = "https://api.deepseek.com"
	DefaultModel       = "deepseek-chat"
	DefaultTemperature = 0.6

	msgNoResult = "未能生成分析结果"
)

// Config configures the chat completions client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	http  *resty.Client
	model string
}

// CompletionRequest is the body accepted by the analyze proxy.
type CompletionRequest struct {
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []llm.Message  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// GatewayError is a failed or empty model call.
type GatewayError struct {
	StatusCode int
	Message    string
	// Detail carries the provider's own error text when it sent one.
	Detail string
	Err    error
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// New builds a client. Empty fields fall back to the DeepSeek defaults.
func New(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	h := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		h.SetAuthToken(key)
	}
	return &Client{http: h, model: model}
}

// Model returns the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one chat completion and returns the provider envelope as is.
// A missing or zero temperature is sent as 0.6.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) ([]byte, error) {
	temperature := DefaultTemperature
	if req.Temperature != nil && *req.Temperature != 0 {
		temperature = *req.Temperature
	}
	body := chatRequest{
		Model:          c.model,
		Messages:       req.Messages,
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    temperature,
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	fields := telemetry.Fields{
		"model":       c.model,
		"messages":    len(req.Messages),
		"temperature": temperature,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["err"] = err
		telemetry.Error("llm.call", fields)
		return nil, &GatewayError{Message: "API请求失败: " + err.Error(), Err: err}
	}

	raw := resp.Body()
	fields["status"] = resp.StatusCode()
	if resp.IsError() {
		detail := gjson.GetBytes(raw, "error.message").String()
		fields["err"] = detail
		telemetry.Error("llm.call", fields)
		return nil, &GatewayError{
			StatusCode: resp.StatusCode(),
			Message:    "API请求失败: " + statusText(resp),
			Detail:     detail,
		}
	}
	if msg := gjson.GetBytes(raw, "error.message"); msg.Exists() {
		fields["err"] = msg.String()
		telemetry.Error("llm.call", fields)
		return nil, &GatewayError{
			StatusCode: resp.StatusCode(),
			Message:    "API请求失败: " + msg.String(),
			Detail:     msg.String(),
		}
	}

	usage := gjson.GetBytes(raw, "usage")
	fields["prompt_tokens"] = usage.Get("prompt_tokens").Int()
	fields["completion_tokens"] = usage.Get("completion_tokens").Int()
	fields["total_tokens"] = usage.Get("total_tokens").Int()
	telemetry.Info("llm.call", fields)
	return raw, nil
}

// Analyze runs the conversation and decodes the reply into a Result.
func (c *Client) Analyze(ctx context.Context, messages []llm.Message) (analysis.Result, error) {
	raw, err := c.Complete(ctx, CompletionRequest{Messages: messages})
	if err != nil {
		return analysis.Result{}, err
	}
	content := gjson.GetBytes(raw, "choices.0.message.content").String()
	if strings.TrimSpace(content) == "" {
		return analysis.Result{}, &GatewayError{Message: msgNoResult}
	}
	return analysis.Decode([]byte(content))
}

func statusText(resp *resty.Response) string {
	if text := http.StatusText(resp.StatusCode()); text != "" {
		return text
	}
	return resp.Status()
}
