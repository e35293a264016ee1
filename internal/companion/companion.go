// Package companion is the study buddy chat client: it owns the connection settings and
// the in-memory transcript, and relays one message at a time to a chat-completions endpoint.
package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"studyroom/internal/chat"
	"studyroom/internal/contextmgr"
	"studyroom/internal/i18n"
	"studyroom/internal/logger"
	"studyroom/internal/provider"
	"studyroom/internal/storage"
	"studyroom/internal/timer"
)

// Temperature is sent with every request and is not configurable.
const Temperature = 0.7

const errorBodyRunes = 120

var (
	ErrEmptyMessage     = errors.New("message is empty")
	ErrSendInFlight     = errors.New("a message is already being sent")
	ErrIncompleteConfig = errors.New("endpoint base, api key and model are required")
)

// StatusSource 提供学习状态，用于注入第二条 system 消息
// StatusSource exposes the study state injected as the second system message.
type StatusSource interface {
	Active() bool
	CurrentSeconds() int64
}

// Options configures a Client. Zero values use the package defaults.
type Options struct {
	// Defaults seed fields the store has no value for.
	Defaults          Config
	Translator        *i18n.I18n
	Tokenizer         *contextmgr.Tokenizer
	HistoryTokenLimit int
}

// Result describes one accepted send.
type Result struct {
	Reply     chat.Message
	RequestID string
	// Failed is true when Reply is the fallback message.
	Failed bool
}

// Client 学习搭子对话客户端，同一时间最多一个请求在途
// Client is the companion chat client. At most one request is in flight at a time.
type Client struct {
	kv        storage.KV
	secrets   storage.SecretStore
	provider  provider.Provider
	status    StatusSource
	tr        *i18n.I18n
	assembler *contextmgr.Assembler
	log       zerolog.Logger

	mu         sync.Mutex
	cfg        Config
	transcript []chat.Message
	sending    bool
	lastErr    string
	listeners  []func()
}

// New loads the persisted config and starts a transcript holding only the greeting.
func New(kv storage.KV, secrets storage.SecretStore, p provider.Provider, status StatusSource, opts Options) (*Client, error) {
	if secrets == nil {
		secrets = storage.NewLocalSecrets(kv)
	}
	tr := opts.Translator
	if tr == nil {
		tr = i18n.Global()
	}
	limit := opts.HistoryTokenLimit
	if limit == 0 {
		limit = DefaultHistoryTokenLimit
	}
	tok := opts.Tokenizer
	if tok == nil {
		tok = contextmgr.DefaultTokenizer()
	}

	cfg, err := loadConfig(kv, secrets, opts.Defaults)
	if err != nil {
		return nil, err
	}
	return &Client{
		kv:         kv,
		secrets:    secrets,
		provider:   p,
		status:     status,
		tr:         tr,
		assembler:  contextmgr.NewAssembler(tok, limit),
		log:        logger.With("companion"),
		cfg:        cfg,
		transcript: []chat.Message{chat.Assistant(tr.T("companion.greeting"))},
	}, nil
}

// Config returns the current connection settings.
func (c *Client) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// UpdateConfig 修改并立即持久化单个字段
// UpdateConfig changes one field and persists it immediately.
func (c *Client) UpdateConfig(field Field, value string) error {
	c.mu.Lock()
	next := c.cfg
	switch field {
	case FieldEndpointBase:
		next.EndpointBase = value
	case FieldAPIKey:
		next.APIKey = value
	case FieldModel:
		next.Model = value
	default:
		c.mu.Unlock()
		return fmt.Errorf("unknown config field %q", field)
	}
	if err := saveField(c.kv, c.secrets, field, value); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("save %s: %w", field, err)
	}
	c.cfg = next
	listeners := c.listeners
	c.mu.Unlock()

	c.log.Info().Str("field", string(field)).Msg("config updated")
	notify(listeners)
	return nil
}

// SendMessage 发送一条用户消息并追加回复（或兜底消息）
// SendMessage appends text as a user message, requests a reply and appends it.
//
// Blank text, a send already in flight and incomplete config are rejected before the
// transcript or the network is touched. Transport failures set LastError, append the
// fallback assistant message and are returned as the error.
func (c *Client) SendMessage(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return Result{}, ErrSendInFlight
	}
	cfg := c.cfg
	if !cfg.Complete() {
		c.lastErr = c.tr.T("companion.error.config")
		listeners := c.listeners
		c.mu.Unlock()
		notify(listeners)
		return Result{}, ErrIncompleteConfig
	}

	c.lastErr = ""
	c.sending = true
	c.transcript = append(c.transcript, chat.User(text))
	messages := c.assembler.Build(c.tr.T("companion.persona"), c.statusText(), c.transcript)
	listeners := c.listeners
	c.mu.Unlock()
	notify(listeners)

	defer func() {
		c.mu.Lock()
		c.sending = false
		listeners := c.listeners
		c.mu.Unlock()
		notify(listeners)
	}()

	resp, err := c.provider.Chat(ctx, provider.ChatRequest{
		Endpoint:    cfg.Endpoint(),
		Messages:    messages,
		Temperature: Temperature,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = c.describe(err)
		reply := chat.Assistant(c.tr.T("companion.fallback"))
		c.transcript = append(c.transcript, reply)
		c.log.Warn().Err(err).Msg("companion reply failed")
		return Result{Reply: reply, Failed: true}, err
	}
	reply := chat.Assistant(resp.Content)
	c.transcript = append(c.transcript, reply)
	return Result{Reply: reply, RequestID: resp.RequestID}, nil
}

func (c *Client) statusText() string {
	active, seconds := false, int64(0)
	if c.status != nil {
		active, seconds = c.status.Active(), c.status.CurrentSeconds()
	}
	return c.tr.T("companion.status", timer.StatusLine(c.tr, active, seconds))
}

// describe 把失败转换成显示给用户的简短文字
// describe turns a failure into the short inline error shown near the input.
func (c *Client) describe(err error) string {
	var statusErr *provider.StatusError
	switch {
	case errors.As(err, &statusErr):
		return c.tr.T("companion.error.status", statusErr.Code, truncateRunes(statusErr.Body, errorBodyRunes))
	case errors.Is(err, provider.ErrNoContent):
		return c.tr.T("companion.error.empty")
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return c.tr.T("companion.error.generic")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// LastError returns the inline error from the most recent send, or "".
func (c *Client) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Sending reports whether a request is in flight.
func (c *Client) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// Transcript returns a copy of the conversation, greeting first.
func (c *Client) Transcript() []chat.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return chat.Clone(c.transcript)
}

// StarterPrompts returns the suggested first questions.
func (c *Client) StarterPrompts() []string {
	return []string{
		c.tr.T("companion.tip.1"),
		c.tr.T("companion.tip.2"),
		c.tr.T("companion.tip.3"),
	}
}

// OnChange registers fn to run after config, transcript or sending state changes.
func (c *Client) OnChange(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners[:len(c.listeners):len(c.listeners)], fn)
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
