// Package cluster 通过 LLM 把当天的文章标题聚合为若干话题。
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/jsonx"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/llm"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/logger"
	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/pacing"
)

// FallbackKeyword 兜底话题名称
const FallbackKeyword = "今日要闻"

const promptTpl = `你是一名新闻编辑。下面是今天的新闻标题列表，方括号中的数字是文章编号。
请把讨论同一事件或主题的文章归为一组，每组给出：
- keyword: 简短的话题关键词（2-8 个字）
- articleIds: 属于该组的文章编号数组
- summary: 一句话概括该话题
- relatedKeywords: 与其他组存在关联的关键词（使用其他组的 keyword）

请务必严格按照以下 JSON 格式返回，不要包含任何 markdown 标记：
{"clusters":[{"keyword":"...","articleIds":[0,2],"summary":"...","relatedKeywords":["..."]}]}

新闻标题：
%s`

// Clusterer 话题聚合器
type Clusterer struct {
	gen         llm.Generator
	pacer       pacing.Pacer
	maxTokens   int
	temperature *float32
}

// New 创建聚合器
func New(gen llm.Generator, pacer pacing.Pacer, maxTokens int, temperature *float32) *Clusterer {
	if pacer == nil {
		pacer = pacing.None{}
	}
	return &Clusterer{gen: gen, pacer: pacer, maxTokens: maxTokens, temperature: temperature}
}

// Cluster 对文章进行聚合。LLM 调用失败、输出无法解析或为空时，返回一个包含全部文章的兜底话题
func (c *Clusterer) Cluster(ctx context.Context, articles []dm.Article) []dm.Cluster {
	if len(articles) == 0 {
		return nil
	}

	text, err := c.generate(ctx, articles)
	if err != nil {
		logger.Log.Errorf("话题聚合调用失败，使用兜底话题: %v", err)
		return []dm.Cluster{Fallback(articles)}
	}

	clusters, ok := Parse(text, articles)
	if !ok {
		logger.Log.Warnf("话题聚合结果无法使用，使用兜底话题")
		return []dm.Cluster{Fallback(articles)}
	}
	logger.Log.Infof("话题聚合完成，共 %d 个话题", len(clusters))
	return clusters
}

func (c *Clusterer) generate(ctx context.Context, articles []dm.Article) (string, error) {
	var sb strings.Builder
	for i, art := range articles {
		fmt.Fprintf(&sb, "[%d] %s\n", i, art.Title)
	}

	if err := c.pacer.Wait(ctx); err != nil {
		return "", fmt.Errorf("pacer wait: %w", err)
	}
	return c.gen.Generate(ctx, llm.Request{
		System:      "你是一个 JSON 生成器。请只输出 JSON 字符串。",
		Prompt:      fmt.Sprintf(promptTpl, sb.String()),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
}

// Fallback 返回包含全部文章的兜底话题
func Fallback(articles []dm.Article) dm.Cluster {
	return dm.Cluster{
		Keyword:  FallbackKeyword,
		Articles: append([]dm.Article(nil), articles...),
	}
}

// articleRef 兼容数字编号与字符串 ID
type articleRef string

func (r *articleRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = articleRef(strings.TrimSpace(s))
		return nil
	}
	// 数字、null、布尔等原样保留，解析时无法匹配的会被丢弃
	*r = articleRef(data)
	return nil
}

type rawCluster struct {
	Keyword         string       `json:"keyword"`
	ArticleIDs      []articleRef `json:"articleIds"`
	Summary         string       `json:"summary"`
	RelatedKeywords []string     `json:"relatedKeywords"`
}

type rawResponse struct {
	Clusters []rawCluster `json:"clusters"`
}

// Parse 解析 LLM 输出。返回 false 表示应使用兜底话题
func Parse(text string, articles []dm.Article) ([]dm.Cluster, bool) {
	res := jsonx.Extract(text, rawResponse{})
	if !res.Parsed {
		logger.Log.Debugf("聚合结果解析失败: %v", res.Err)
		return nil, false
	}

	var clusters []dm.Cluster
	for _, rc := range res.Value.Clusters {
		keyword := strings.TrimSpace(rc.Keyword)
		if keyword == "" {
			continue
		}
		resolved := resolve(rc.ArticleIDs, articles)
		if len(resolved) == 0 {
			logger.Log.Debugf("话题 [%s] 没有可用文章，丢弃", keyword)
			continue
		}
		clusters = append(clusters, dm.Cluster{
			Keyword:         keyword,
			Summary:         strings.TrimSpace(rc.Summary),
			RelatedKeywords: cleanKeywords(rc.RelatedKeywords, keyword),
			Articles:        resolved,
		})
	}
	if len(clusters) == 0 {
		return nil, false
	}
	return clusters, true
}

// resolve 把编号或 ID 映射为文章，无法解析的编号被丢弃
func resolve(refs []articleRef, articles []dm.Article) []dm.Article {
	byID := make(map[string]int, len(articles))
	for i, a := range articles {
		byID[a.ID] = i
	}

	seen := make(map[int]bool, len(refs))
	var out []dm.Article
	for _, ref := range refs {
		idx, ok := byID[string(ref)]
		if !ok {
			n, err := strconv.Atoi(string(ref))
			if err != nil || n < 0 || n >= len(articles) {
				continue
			}
			idx = n
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, articles[idx])
	}
	return out
}

func cleanKeywords(in []string, self string) []string {
	var out []string
	seen := map[string]bool{strings.ToLower(self): true}
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		out = append(out, k)
	}
	return out
}
