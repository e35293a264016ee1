package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ListModels 通过 go-openai SDK 列出可用模型
// ListModels lists the endpoint's models through the go-openai SDK.
func (c *Client) ListModels(ctx context.Context, ep Endpoint) ([]ModelInfo, error) {
	baseURL := ep.baseURL()
	if baseURL == "" {
		return nil, fmt.Errorf("base_url is empty")
	}
	config := openai.DefaultConfig(strings.TrimSpace(ep.APIKey))
	config.BaseURL = baseURL
	config.HTTPClient = c.httpClient

	resp, err := openai.NewClientWithConfig(config).ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	models := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, ModelInfo{
			ID:      m.ID,
			OwnedBy: m.OwnedBy,
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}
