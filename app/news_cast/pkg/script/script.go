// Package script 为每个话题生成中文播报稿。
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/jsonx"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/llm"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/logger"
	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/pacing"
)

var (
	// ErrEmptyScript 生成结果中没有可播报的内容
	ErrEmptyScript = errors.New("empty script")
	// ErrMalformedScript 输出像 JSON 但无法解析 (例如被 max_tokens 截断)
	ErrMalformedScript = errors.New("malformed script json")
)

const promptTpl = `你是一名电台新闻主播。请根据以下话题和相关新闻标题，撰写一段中文普通话播报稿。
要求：
- 长度约 %d 字（允许在 %d 到 %d 字之间）
- 口语化、适合朗读，不要出现列表符号、表情或 markdown
- 每句话单独成行

话题：%s
话题概述：%s
相关新闻标题：
%s
请务必严格按照以下 JSON 格式返回，不要包含任何 markdown 标记：
{
	"title": "节目标题（15字以内）",
	"script": "播报稿正文，使用 \n 分行",
	"keyPoints": ["要点1", "要点2", "要点3"],
	"stats": [{"number": "30%%", "label": "数据说明"}],
	"topics": ["相关主题1", "相关主题2"]
}`

// Result 播报稿及其摘要
type Result struct {
	Title   string
	Script  string
	Summary dm.Summary
}

type rawScript struct {
	Title     string    `json:"title"`
	Script    string    `json:"script"`
	KeyPoints []string  `json:"keyPoints"`
	Stats     []dm.Stat `json:"stats"`
	Topics    []string  `json:"topics"`
}

// Writer 播报稿生成器
type Writer struct {
	gen         llm.Generator
	pacer       pacing.Pacer
	targetChars int
	maxTokens   int
	temperature *float32
}

// New 创建生成器，targetChars <= 0 时使用 280
func New(gen llm.Generator, pacer pacing.Pacer, targetChars, maxTokens int, temperature *float32) *Writer {
	if pacer == nil {
		pacer = pacing.None{}
	}
	if targetChars <= 0 {
		targetChars = 280
	}
	return &Writer{gen: gen, pacer: pacer, targetChars: targetChars, maxTokens: maxTokens, temperature: temperature}
}

// Write 为一个话题生成播报稿。调用失败或结果为空时返回错误
func (w *Writer) Write(ctx context.Context, c dm.Cluster) (*Result, error) {
	if err := w.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pacer wait: %w", err)
	}

	text, err := w.gen.Generate(ctx, llm.Request{
		System:      "你是一个 JSON 生成器。请只输出 JSON 字符串。",
		Prompt:      w.prompt(c),
		MaxTokens:   w.maxTokens,
		Temperature: w.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate script: %w", err)
	}

	res, err := Parse(text, c.Keyword)
	if err != nil {
		return nil, err
	}
	if res.Script == "" {
		return nil, ErrEmptyScript
	}
	logger.Log.Debugf("话题 [%s] 播报稿生成完成，%d 字", c.Keyword, len([]rune(res.Script)))
	return res, nil
}

func (w *Writer) prompt(c dm.Cluster) string {
	var sb strings.Builder
	for _, a := range c.Articles {
		fmt.Fprintf(&sb, "- %s\n", a.Title)
	}
	lo, hi := w.targetChars*9/10, w.targetChars*11/10
	return fmt.Sprintf(promptTpl, w.targetChars, lo, hi, c.Keyword, c.Summary, sb.String())
}

// Parse 解析 LLM 输出。不含 JSON 的纯文本整段作为播报稿，标题使用关键词；
// 含有 '{' 却无法解析的输出返回 ErrMalformedScript，避免把 JSON 片段读出来
func Parse(text, keyword string) (*Result, error) {
	parsed := jsonx.Extract(text, rawScript{})
	if !parsed.Parsed {
		if strings.Contains(text, "{") {
			return nil, fmt.Errorf("%w: %v", ErrMalformedScript, parsed.Err)
		}
		return &Result{Title: keyword, Script: strings.TrimSpace(text)}, nil
	}

	raw := parsed.Value
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = keyword
	}
	return &Result{
		Title:  title,
		Script: strings.TrimSpace(raw.Script),
		Summary: dm.Summary{
			KeyPoints: nonEmpty(raw.KeyPoints),
			Stats:     raw.Stats,
			Topics:    nonEmpty(raw.Topics),
		},
	}, nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
