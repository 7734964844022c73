// Package model 定义一次运行中的文章、话题、节目及每日 Bundle 的结构。
package model

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"
)

// ConnectionsKey 是 Bundle 中保留的关系图字段名
const ConnectionsKey = "_connections"

// Article 当日输入的新闻条目，仅在一次运行内存在
type Article struct {
	ID           string
	Title        string
	Content      string
	Image        string
	Date         string
	CategoryCode string
}

// Cluster 由 LLM 聚合出的话题
type Cluster struct {
	Keyword         string
	Summary         string
	RelatedKeywords []string
	Articles        []Article
}

// ArticleIDs 返回话题下所有文章的 ID
func (c Cluster) ArticleIDs() []string {
	ids := make([]string, 0, len(c.Articles))
	for _, a := range c.Articles {
		ids = append(ids, a.ID)
	}
	return ids
}

// NormalizeKeyword 转为小写，连续的非字母数字字符替换为 '_'，并去掉首尾的 '_'
func NormalizeKeyword(keyword string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(keyword) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// Stat 摘要中的数据点
type Stat struct {
	Number string `json:"number"`
	Label  string `json:"label"`
}

// Summary 节目要点
type Summary struct {
	KeyPoints []string `json:"keyPoints"`
	Stats     []Stat   `json:"stats"`
	Topics    []string `json:"topics"`
}

// Segment 字幕片段，单位为秒
type Segment struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Episode 一个话题对应的播报节目
type Episode struct {
	Keyword         string    `json:"keyword"`
	Title           string    `json:"title"`
	Duration        int       `json:"duration"`
	AudioURL        string    `json:"audioUrl"` // 为空表示音频不可用
	CoverColor      string    `json:"coverColor"`
	CoverImage      string    `json:"coverImage"`
	RelatedKeywords []string  `json:"relatedKeywords"`
	Summary         Summary   `json:"summary"`
	Transcript      []Segment `json:"transcript"`

	// 以下字段只在运行期使用
	Key        string   `json:"-"`
	ArticleIDs []string `json:"-"`
	Script     string   `json:"-"`
}

// EdgeKind 关系类型
type EdgeKind string

const (
	EdgeDirect  EdgeKind = "direct"
	EdgeOverlap EdgeKind = "overlap"
)

// Edge 节目之间的关联
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Strength float64  `json:"strength"`
	Kind     EdgeKind `json:"-"`
}

// Bundle 每日发布的完整文档
type Bundle struct {
	Episodes    map[string]Episode
	Connections []Edge
}

// MarshalJSON 将节目平铺为顶层字段，并附加 _connections
func (b Bundle) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Episodes)+1)
	keys := make([]string, 0, len(b.Episodes))
	for k := range b.Episodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ep := b.Episodes[k]
		if ep.RelatedKeywords == nil {
			ep.RelatedKeywords = []string{}
		}
		if ep.Transcript == nil {
			ep.Transcript = []Segment{}
		}
		if ep.Summary.KeyPoints == nil {
			ep.Summary.KeyPoints = []string{}
		}
		if ep.Summary.Stats == nil {
			ep.Summary.Stats = []Stat{}
		}
		if ep.Summary.Topics == nil {
			ep.Summary.Topics = []string{}
		}
		out[k] = ep
	}

	conns := b.Connections
	if conns == nil {
		conns = []Edge{}
	}
	out[ConnectionsKey] = conns
	return json.Marshal(out)
}

// UnmarshalJSON 是 MarshalJSON 的逆过程
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.Episodes = make(map[string]Episode, len(raw))
	b.Connections = nil
	for k, v := range raw {
		if k == ConnectionsKey {
			if err := json.Unmarshal(v, &b.Connections); err != nil {
				return err
			}
			continue
		}
		var ep Episode
		if err := json.Unmarshal(v, &ep); err != nil {
			return err
		}
		ep.Key = k
		b.Episodes[k] = ep
	}
	return nil
}
