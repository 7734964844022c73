package llm

import (
	"context"
	"fmt"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

// Request 一次文本生成请求
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature *float32 // 为 nil 时使用模型默认值
}

// Generator 定义通用的文本生成接口
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// NewGenerator 根据配置创建生成器实例
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "", "openai":
		return NewOpenAI(ctx, cfg)
	case "gemini":
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
