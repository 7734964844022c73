package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// Store 按 key 读写对象的存储
type Store interface {
	// Get 读取对象，不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Put 写入对象，已存在时覆盖
	Put(ctx context.Context, key string, body []byte, contentType string) error
	// URL 返回对象的公开地址，只由 bucket 和 key 决定
	URL(key string) string
}

// PublicURL 拼接 baseURL/bucket/key
func PublicURL(baseURL, bucket, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}

// New 根据配置创建指定 bucket 的存储实例
func New(ctx context.Context, cfg config.StorageConfig, bucket string) (Store, error) {
	switch cfg.Provider {
	case "gcs":
		return NewGCS(ctx, cfg, bucket)
	case "postgres":
		return OpenSQL(ctx, DialectPostgres, cfg.DSN, bucket, cfg.PublicBaseURL)
	case "sqlite":
		return OpenSQL(ctx, DialectSQLite, cfg.DSN, bucket, cfg.PublicBaseURL)
	case "memory":
		return NewMemory(bucket, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}
