package companion

import (
	"fmt"
	"strings"

	"studyroom/internal/provider"
	"studyroom/internal/storage"
)

const (
	DefaultEndpointBase      = "https://api.openai.com/v1"
	DefaultModel             = "gpt-4o-mini"
	DefaultHistoryTokenLimit = 6000
)

// Config 接口连接设置；API Key 只经由 SecretStore 读写
// Config is the user-editable connection triple. The API key only moves through SecretStore.
type Config struct {
	EndpointBase string
	APIKey       string
	Model        string
}

// Endpoint converts c into the provider request shape.
func (c Config) Endpoint() provider.Endpoint {
	return provider.Endpoint{BaseURL: c.EndpointBase, APIKey: c.APIKey, Model: c.Model}
}

// Complete reports whether every field is non-blank.
func (c Config) Complete() bool {
	return c.Endpoint().Complete()
}

// MaskedKey renders the key for display without revealing it.
func (c Config) MaskedKey() string {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return ""
	}
	runes := []rune(key)
	if len(runes) <= 8 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:3]) + strings.Repeat("*", 6) + string(runes[len(runes)-4:])
}

// Field names one editable config value.
type Field string

const (
	FieldEndpointBase Field = "base"
	FieldAPIKey       Field = "key"
	FieldModel        Field = "model"
)

// ParseField accepts the short names and a few long aliases.
func ParseField(s string) (Field, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base", "base_url", "endpoint", "url":
		return FieldEndpointBase, true
	case "key", "api_key", "apikey":
		return FieldAPIKey, true
	case "model":
		return FieldModel, true
	}
	return "", false
}

// loadConfig 读取存储中的配置；未保存或为空的字段使用 defaults
// loadConfig reads the stored config. Fields that are unset or blank fall back to defaults.
func loadConfig(kv storage.KV, secrets storage.SecretStore, defaults Config) (Config, error) {
	cfg := defaults
	if cfg.EndpointBase == "" {
		cfg.EndpointBase = DefaultEndpointBase
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	if v, ok, err := kv.Get(storage.KeyChatEndpointBase); err != nil {
		return Config{}, fmt.Errorf("load endpoint base: %w", err)
	} else if ok && v != "" {
		cfg.EndpointBase = v
	}
	if v, ok, err := kv.Get(storage.KeyChatModel); err != nil {
		return Config{}, fmt.Errorf("load model: %w", err)
	} else if ok && v != "" {
		cfg.Model = v
	}
	key, err := secrets.Secret(storage.SecretChatAPIKey)
	if err != nil {
		return Config{}, fmt.Errorf("load api key: %w", err)
	}
	if key != "" {
		cfg.APIKey = key
	}
	return cfg, nil
}

func saveField(kv storage.KV, secrets storage.SecretStore, field Field, value string) error {
	switch field {
	case FieldEndpointBase:
		return kv.Set(storage.KeyChatEndpointBase, value)
	case FieldModel:
		return kv.Set(storage.KeyChatModel, value)
	case FieldAPIKey:
		if value == "" {
			return secrets.DeleteSecret(storage.SecretChatAPIKey)
		}
		return secrets.SetSecret(storage.SecretChatAPIKey, value)
	}
	return fmt.Errorf("unknown config field %q", field)
}
