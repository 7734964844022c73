package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

// Gemini 通过 Google Generative AI SDK 生成文本
type Gemini struct {
	client *genai.Client
	model  string
}

// 确保 Gemini 实现了 Generator 接口
var _ Generator = (*Gemini)(nil)

// NewGemini 创建 Gemini 生成器
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.Model}, nil
}

// Generate 调用 Gemini 生成文本
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	m := g.client.GenerativeModel(g.model)
	if req.Temperature != nil {
		m.SetTemperature(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		m.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return textFromResponse(resp)
}

// Close 释放底层连接
func (g *Gemini) Close() error {
	return g.client.Close()
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
