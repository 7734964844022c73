package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

const gcsPublicBaseURL = "https://storage.googleapis.com"

// GCS Google Cloud Storage 存储
type GCS struct {
	svc     *storage.Service
	bucket  string
	baseURL string
}

// 确保 GCS 实现了 Store 接口
var _ Store = (*GCS)(nil)

// NewGCS 创建 GCS 存储实例
func NewGCS(ctx context.Context, cfg config.StorageConfig, bucket string, opts ...option.ClientOption) (*GCS, error) {
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = gcsPublicBaseURL
	}
	return &GCS{svc: svc, bucket: bucket, baseURL: baseURL}, nil
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := g.svc.Objects.Get(g.bucket, key).Context(ctx).Download()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get gs://%s/%s: %w", g.bucket, key, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gs://%s/%s: %w", g.bucket, key, err)
	}
	return body, nil
}

func (g *GCS) Put(ctx context.Context, key string, body []byte, contentType string) error {
	obj := &storage.Object{
		Name:         key,
		ContentType:  contentType,
		CacheControl: "no-cache",
	}
	_, err := g.svc.Objects.Insert(g.bucket, obj).
		Media(bytes.NewReader(body), googleapi.ContentType(contentType)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("put gs://%s/%s: %w", g.bucket, key, err)
	}
	return nil
}

func (g *GCS) URL(key string) string {
	return PublicURL(g.baseURL, g.bucket, key)
}
