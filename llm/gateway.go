// Package llm implements the gateway to an OpenAI-compatible chat
// completions endpoint shared by the planner and verifier.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/atominnolab/opensift/config"
	"github.com/atominnolab/opensift/internal/metrics"
	"github.com/atominnolab/opensift/internal/tlsutil"
	"github.com/atominnolab/opensift/llm/retry"
	"github.com/atominnolab/opensift/types"
	"go.uber.org/zap"
)

// chatMessage is one OpenAI-compatible chat message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage"`
}

// Gateway issues chat completions against an OpenAI-compatible endpoint
// and returns either raw text or a parsed JSON object. One instance is
// shared across the planner and the verifier.
type Gateway struct {
	cfg     config.AIConfig
	client  *http.Client
	retryer retry.Retryer
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewGateway builds a Gateway from the AI section of the service config.
func NewGateway(cfg config.AIConfig, collector *metrics.Collector, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := retry.DefaultRetryPolicy()
	policy.MaxRetries = cfg.MaxRetries
	policy.RetryableErrors = []error{&retry.RetryableError{}}
	return &Gateway{
		cfg:     cfg,
		client:  tlsutil.SecureHTTPClient(cfg.Timeout),
		retryer: retry.NewBackoffRetryer(policy, logger),
		metrics: collector,
		logger:  logger.With(zap.String("component", "llm_gateway")),
	}
}

func maskKey(key string) string {
	if len(key) <= 12 {
		return "***"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

// ChatRaw sends one chat completion request and returns the raw text
// response. model/temperature/maxTokens of zero value fall back to the
// gateway's configured defaults.
func (g *Gateway) ChatRaw(ctx context.Context, role, system, user, model string, temperature float64, maxTokens int) (string, error) {
	if model == "" {
		model = g.modelForRole(role)
	}
	if maxTokens == 0 {
		maxTokens = g.cfg.MaxTokens
	}

	start := time.Now()
	content, usage, err := g.call(ctx, model, system, user, temperature, maxTokens)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	if g.metrics != nil {
		promptTokens, completionTokens := 0, 0
		if usage != nil {
			promptTokens, completionTokens = usage.PromptTokens, usage.CompletionTokens
		}
		g.metrics.RecordLLMRequest(role, model, status, duration, promptTokens, completionTokens)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", types.NewError(types.ErrLLMEmpty, "model returned empty content").WithProvider(model)
	}
	return content, nil
}

// ChatJSON sends one chat completion request and parses the response as a
// JSON object, applying the repair pipeline on parse failure and retrying
// up to maxRetries times (forcing temperature=0) before raising
// ErrLLMBadJSON.
func (g *Gateway) ChatJSON(ctx context.Context, role, system, user, model string, temperature float64, maxTokens, maxRetries int) (map[string]any, error) {
	if model == "" {
		model = g.modelForRole(role)
	}
	if maxTokens == 0 {
		maxTokens = g.cfg.MaxTokens
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		curTemp := temperature
		if attempt > 0 {
			curTemp = 0
		}

		start := time.Now()
		content, usage, err := g.call(ctx, model, system, user, curTemp, maxTokens)
		duration := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
		}
		if g.metrics != nil {
			promptTokens, completionTokens := 0, 0
			if usage != nil {
				promptTokens, completionTokens = usage.PromptTokens, usage.CompletionTokens
			}
			g.metrics.RecordLLMRequest(role, model, status, duration, promptTokens, completionTokens)
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) == "" {
			return nil, types.NewError(types.ErrLLMEmpty, "model returned empty content").WithProvider(model)
		}

		stripped := stripCodeFence(content)

		var obj map[string]any
		if jsonErr := json.Unmarshal([]byte(stripped), &obj); jsonErr == nil {
			if attempt > 0 && g.metrics != nil {
				g.metrics.RecordJSONRepair(role, "retried")
			}
			return obj, nil
		}

		if repaired := repairJSON(stripped); repaired != nil {
			if g.metrics != nil {
				g.metrics.RecordJSONRepair(role, "repaired")
			}
			g.logger.Warn("LLM returned malformed JSON, auto-repaired",
				zap.String("role", role), zap.Int("attempt", attempt+1))
			return repaired, nil
		}

		g.logger.Warn("LLM returned malformed JSON, repair failed",
			zap.String("role", role), zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries))
		lastErr = types.NewError(types.ErrLLMBadJSON, "invalid JSON from LLM after repair attempt").WithProvider(model)
	}

	if g.metrics != nil {
		g.metrics.RecordJSONRepair(role, "failed")
	}
	return nil, lastErr
}

// VerifyConnection sends a single minimal probe (max_tokens=1) to check
// connectivity and authentication. It never returns an error: failures are
// logged with a diagnosis and reported as false.
func (g *Gateway) VerifyConnection(ctx context.Context, model string) bool {
	if model == "" {
		model = g.cfg.ModelPlanner
	}
	url := g.cfg.BaseURL + "/chat/completions"
	g.logger.Info("verifying LLM connectivity", zap.String("url", url), zap.String("model", model))

	_, _, err := g.call(ctx, model, "", "ping", 0, 1)
	if err != nil {
		g.logger.Error("LLM connectivity check failed", zap.String("diagnosis", err.Error()))
		return false
	}
	g.logger.Info("LLM connectivity OK", zap.String("model", model))
	return true
}

func (g *Gateway) modelForRole(role string) string {
	if role == "verifier" {
		return g.cfg.ModelVerifier
	}
	return g.cfg.ModelPlanner
}

// call performs one HTTP round trip and maps any failure to a typed
// *types.Error.
func (g *Gateway) call(ctx context.Context, model, system, user string, temperature float64, maxTokens int) (string, *chatUsage, error) {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	body := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", nil, types.NewError(types.ErrInternal, "failed to marshal chat request").WithCause(err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	g.logger.Info("LLM request",
		zap.String("url", url), zap.String("model", model),
		zap.Float64("temperature", temperature), zap.Int("max_tokens", maxTokens),
		zap.String("api_key", maskKey(g.cfg.APIKey)),
		zap.Int("system_prompt_len", len(system)), zap.Int("user_prompt_len", len(user)))

	result, err := g.doRequest(ctx, url, payload, model)
	if err != nil {
		return "", nil, err
	}
	if len(result.Choices) == 0 {
		return "", nil, types.NewError(types.ErrLLMEmpty, "model returned no choices").WithProvider(model)
	}

	content := result.Choices[0].Message.Content
	g.logger.Info("LLM response OK",
		zap.String("model", result.Model), zap.Int("content_len", len(content)))
	return content, result.Usage, nil
}

// doRequest performs the HTTP round trip through the gateway's retryer,
// retrying only on errors marked Retryable (429, 5xx, transport/decode
// failures) and returning the underlying *types.Error unwrapped either way.
func (g *Gateway) doRequest(ctx context.Context, url string, payload []byte, model string) (*chatResponse, error) {
	var out *chatResponse
	retryErr := g.retryer.Do(ctx, func() error {
		result, callErr := g.doRequestOnce(ctx, url, payload, model)
		if callErr != nil {
			if types.IsRetryable(callErr) {
				return retry.WrapRetryable(callErr)
			}
			return callErr
		}
		out = result
		return nil
	})
	if retryErr != nil {
		var typedErr *types.Error
		if errors.As(retryErr, &typedErr) {
			return nil, typedErr
		}
		return nil, retryErr
	}
	return out, nil
}

func (g *Gateway) doRequestOnce(ctx context.Context, url string, payload []byte, model string) (*chatResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, types.NewError(types.ErrInternal, "failed to build LLM request").WithCause(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrLLMUnavailable, fmt.Sprintf("LLM call failed: %v", err)).
			WithRetryable(true).WithProvider(model)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, g.mapHTTPError(resp.StatusCode, readBody(resp.Body), model, url)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, types.NewError(types.ErrLLMUnavailable, fmt.Sprintf("failed to decode LLM response: %v", err)).
			WithRetryable(true).WithProvider(model)
	}
	return &out, nil
}

func readBody(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return ""
	}
	return string(data)
}

// mapHTTPError diagnoses a failed LLM call by HTTP status, matching the
// taxonomy: 401 auth, 403 forbidden, 404 not found, 429 rate limited,
// otherwise unavailable.
func (g *Gateway) mapHTTPError(status int, body, model, url string) *types.Error {
	switch status {
	case http.StatusUnauthorized:
		return types.NewError(types.ErrLLMAuth,
			fmt.Sprintf("authentication failed (HTTP 401): API key is invalid or missing. Check config AI.APIKey. Endpoint: %s", url)).
			WithHTTPStatus(status).WithProvider(model)
	case http.StatusForbidden:
		return types.NewError(types.ErrLLMForbidden,
			fmt.Sprintf("permission denied (HTTP 403): API key lacks access to model %q at %s. "+
				"Request access for this key, rotate to a key with access, or switch provider. Body: %s", model, url, body)).
			WithHTTPStatus(status).WithProvider(model)
	case http.StatusNotFound:
		return types.NewError(types.ErrLLMNotFound,
			fmt.Sprintf("not found (HTTP 404): model %q or endpoint %s does not exist", model, url)).
			WithHTTPStatus(status).WithProvider(model)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrLLMRateLimited,
			fmt.Sprintf("rate limited (HTTP 429) at %s", url)).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(model)
	default:
		return types.NewError(types.ErrLLMUnavailable,
			fmt.Sprintf("LLM API error (HTTP %d): %s", status, body)).
			WithHTTPStatus(status).WithRetryable(status >= 500).WithProvider(model)
	}
}
