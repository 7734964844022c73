package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

// OpenAI 通过 eino 访问兼容 OpenAI 协议的模型 (DeepSeek、Qwen 等)
type OpenAI struct {
	chatModel model.BaseChatModel
}

// 确保 OpenAI 实现了 Generator 接口
var _ Generator = (*OpenAI)(nil)

// NewOpenAI 创建 OpenAI 兼容的生成器
func NewOpenAI(ctx context.Context, cfg config.LLMConfig) (*OpenAI, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &OpenAI{chatModel: chatModel}, nil
}

// NewOpenAIWithModel 使用已有的 ChatModel
func NewOpenAIWithModel(cm model.BaseChatModel) *OpenAI {
	return &OpenAI{chatModel: cm}
}

// Generate 调用模型生成文本
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	var messages []*schema.Message
	if req.System != "" {
		messages = append(messages, &schema.Message{Role: schema.System, Content: req.System})
	}
	messages = append(messages, &schema.Message{Role: schema.User, Content: req.Prompt})

	var opts []model.Option
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}

	resp, err := o.chatModel.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("generate: empty response")
	}
	return resp.Content, nil
}
