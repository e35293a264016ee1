package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studyroom/internal/chat"
	"studyroom/internal/logger"
)

const maxErrorBody = 64 * 1024

// Options configures the HTTP transport. TimeoutMS <= 0 leaves the transport default.
type Options struct {
	TimeoutMS  int
	HTTPClient *http.Client
}

// Client 兼容 OpenAI chat/completions 的 HTTP 客户端
// Client talks to any OpenAI-compatible chat/completions endpoint.
type Client struct {
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
		if opts.TimeoutMS > 0 {
			httpClient.Timeout = time.Duration(opts.TimeoutMS) * time.Millisecond
		}
	}
	return &Client{httpClient: httpClient, log: logger.With("provider")}
}

type compatChatRequest struct {
	Model       string         `json:"model"`
	Messages    []chat.Message `json:"messages"`
	Temperature float64        `json:"temperature"`
}

func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	baseURL := req.Endpoint.baseURL()
	if baseURL == "" {
		return ChatResponse{}, fmt.Errorf("base_url is empty")
	}
	body, err := json.Marshal(compatChatRequest{
		Model:       strings.TrimSpace(req.Endpoint.Model),
		Messages:    req.Messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("create chat request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if key := strings.TrimSpace(req.Endpoint.APIKey); key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}

	log := c.log.With().Str("request_id", requestID).Str("model", req.Endpoint.Model).Logger()
	log.Info().Int("messages", len(req.Messages)).Msg("chat request")
	started := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Msg("chat transport failed")
		return ChatResponse{}, fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn().Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Msg("chat request rejected")
		return ChatResponse{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	out, err := parseResponse(resp.Body)
	if err != nil {
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("chat response unusable")
		return ChatResponse{}, err
	}
	out.RequestID = requestID
	log.Info().Int("status", resp.StatusCode).Dur("elapsed", time.Since(started)).Str("finish_reason", out.FinishReason).Msg("chat reply")
	return out, nil
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body io.Reader) (ChatResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("read chat response: %w", err)
	}

	var raw openAIResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return ChatResponse{}, fmt.Errorf("%w: parse chat response: %v", ErrNoContent, err)
	}
	if len(raw.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("%w: no choices", ErrNoContent)
	}

	content, err := parseContent(raw.Choices[0].Message.Content)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("%w: %v", ErrNoContent, err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ChatResponse{}, ErrNoContent
	}
	return ChatResponse{Content: content, FinishReason: raw.Choices[0].FinishReason}, nil
}

// parseContent 读取 message.content；部分服务端返回分段数组而不是字符串
// parseContent reads message.content. Some servers return typed parts instead of a string.
// Shapes it cannot find text in yield "".
func parseContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, nil
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil && len(parts) > 0 {
		var builder strings.Builder
		for _, part := range parts {
			if part.Text == "" {
				continue
			}
			kind := strings.ToLower(strings.TrimSpace(part.Type))
			if kind != "" && kind != "text" && kind != "output_text" {
				continue
			}
			builder.WriteString(part.Text)
		}
		if builder.Len() > 0 {
			return builder.String(), nil
		}
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("parse response content: %w", err)
	}
	return extractText(generic), nil
}

func extractText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		var builder strings.Builder
		for _, item := range val {
			builder.WriteString(extractText(item))
		}
		return builder.String()
	case map[string]any:
		if kind, ok := val["type"].(string); ok {
			normalized := strings.ToLower(strings.TrimSpace(kind))
			if normalized != "" && normalized != "text" && normalized != "output_text" {
				return ""
			}
		}
		if text, ok := val["text"].(string); ok && text != "" {
			return text
		}
		if content, ok := val["content"]; ok {
			return extractText(content)
		}
	}
	return ""
}
