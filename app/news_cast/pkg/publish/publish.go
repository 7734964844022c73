// Package publish 生成节目 key 与展示字段，并把每日 Bundle 写入对象存储。
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"path"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/logger"
	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/objectstore"
)

// DefaultKey 关键词规范化后为空时使用的 key
const DefaultKey = "episode"

// Palette 封面颜色
var Palette = []string{
	"#E4572E", "#17BEBB", "#FFC914", "#2E282A", "#76B041",
	"#3A86FF", "#8338EC", "#FF006E", "#FB5607", "#06D6A0",
}

// Keys 为一次运行分配互不重复的节目 key
type Keys struct {
	taken map[string]bool
}

// NewKeys 创建 key 分配器
func NewKeys() *Keys {
	return &Keys{taken: make(map[string]bool)}
}

// NormalizeKey 规范化关键词；重复时依次追加 _2、_3 ...
func (k *Keys) NormalizeKey(keyword string) string {
	base := dm.NormalizeKeyword(keyword)
	if base == "" {
		base = DefaultKey
	}
	key := base
	for n := 2; k.taken[key]; n++ {
		key = fmt.Sprintf("%s_%d", base, n)
	}
	k.taken[key] = true
	return key
}

// CoverColor 按 key 的 FNV-32a 哈希从调色板取色
func CoverColor(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return Palette[h.Sum32()%uint32(len(Palette))]
}

// CoverImage 返回第一篇带图文章的图片
func CoverImage(articles []dm.Article) string {
	for _, a := range articles {
		if a.Image != "" {
			return a.Image
		}
	}
	return ""
}

// BundleKey 返回某天 Bundle 的对象 key
func BundleKey(prefix, date string) string {
	return path.Join(prefix, date+".json")
}

// Publisher Bundle 发布器
type Publisher struct {
	store  objectstore.Store
	prefix string
}

// New 创建发布器
func New(store objectstore.Store, prefix string) *Publisher {
	if prefix == "" {
		prefix = "episodes"
	}
	return &Publisher{store: store, prefix: prefix}
}

// Publish 组装并覆盖写入当天的 Bundle，返回对象 key
func (p *Publisher) Publish(ctx context.Context, date string, episodes []dm.Episode, edges []dm.Edge) (string, error) {
	bundle := dm.Bundle{Episodes: make(map[string]dm.Episode, len(episodes)), Connections: edges}
	for _, ep := range episodes {
		bundle.Episodes[ep.Key] = ep
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal bundle: %w", err)
	}

	key := BundleKey(p.prefix, date)
	if err := p.store.Put(ctx, key, data, "application/json"); err != nil {
		return "", fmt.Errorf("put bundle %s: %w", key, err)
	}
	logger.Log.Infof("Bundle 已发布 [%s]，%d 个节目，%d 条关联", key, len(episodes), len(edges))
	return key, nil
}
