package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"studyroom/internal/chat"
)

// ErrNoContent 接口返回成功但没有可用回复
// ErrNoContent means the endpoint answered 2xx without a usable first-choice message.
var ErrNoContent = errors.New("response has no usable content")

// StatusError is returned for non-2xx responses. Body holds at most maxErrorBody bytes.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status %d", e.Code)
	}
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// Endpoint 一次请求使用的连接设置，由用户在运行时修改
// Endpoint is the connection triple used for one request. It is user-editable at runtime,
// so it travels with each request instead of living in the client.
type Endpoint struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Complete reports whether every field is non-blank.
func (e Endpoint) Complete() bool {
	return strings.TrimSpace(e.BaseURL) != "" &&
		strings.TrimSpace(e.APIKey) != "" &&
		strings.TrimSpace(e.Model) != ""
}

func (e Endpoint) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(e.BaseURL), "/")
}

// ChatRequest 封装一次模型请求
// ChatRequest wraps a single chat-completions call.
type ChatRequest struct {
	Endpoint    Endpoint
	Messages    []chat.Message
	Temperature float64
}

// ChatResponse is the first choice of a completed request.
type ChatResponse struct {
	Content      string
	FinishReason string
	RequestID    string
}

// ModelInfo 模型基本信息
// ModelInfo describes a model
type ModelInfo struct {
	ID      string
	OwnedBy string
}

// Provider 模型提供方接口
// Provider is the chat backend used by the companion.
type Provider interface {
	// Chat 发送一次非流式请求，不重试
	// Chat sends one non-streaming request. It never retries.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}

// ModelLister lists the models an endpoint serves.
type ModelLister interface {
	ListModels(ctx context.Context, ep Endpoint) ([]ModelInfo, error)
}
