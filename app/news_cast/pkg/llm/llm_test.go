package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

// fakeChatModel 记录收到的消息和选项
type fakeChatModel struct {
	messages []*schema.Message
	options  *model.Options
	reply    string
	err      error
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.messages = input
	f.options = model.GetCommonOptions(nil, opts...)
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestOpenAI_Generate(t *testing.T) {
	fake := &fakeChatModel{reply: `{"clusters":[]}`}
	g := NewOpenAIWithModel(fake)
	temperature := float32(0.3)

	out, err := g.Generate(context.Background(), Request{
		System:      "你是一个 JSON 生成器。",
		Prompt:      "聚类",
		MaxTokens:   512,
		Temperature: &temperature,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"clusters":[]}`, out)

	require.Len(t, fake.messages, 2)
	assert.Equal(t, schema.System, fake.messages[0].Role)
	assert.Equal(t, "聚类", fake.messages[1].Content)
	require.NotNil(t, fake.options.MaxTokens)
	assert.Equal(t, 512, *fake.options.MaxTokens)
	require.NotNil(t, fake.options.Temperature)
	assert.InDelta(t, 0.3, *fake.options.Temperature, 1e-6)
}

func TestOpenAI_TemperatureOption(t *testing.T) {
	fake := &fakeChatModel{reply: "ok"}
	g := NewOpenAIWithModel(fake)

	zero := float32(0)
	_, err := g.Generate(context.Background(), Request{Prompt: "x", Temperature: &zero})
	require.NoError(t, err)
	require.NotNil(t, fake.options.Temperature)
	assert.Zero(t, *fake.options.Temperature)

	_, err = g.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Nil(t, fake.options.Temperature)
}

func TestOpenAI_GenerateError(t *testing.T) {
	g := NewOpenAIWithModel(&fakeChatModel{err: errors.New("429 too many requests")})
	_, err := g.Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := NewGenerator(context.Background(), config.LLMConfig{Provider: "claude"})
	assert.EqualError(t, err, "unknown llm provider: claude")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), config.LLMConfig{Provider: "gemini"})
	assert.Error(t, err)
}
