package objectstore

import (
	"context"
	"sync"
)

// Memory 进程内存储，用于本地试跑和测试
type Memory struct {
	bucket  string
	baseURL string

	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

// 确保 Memory 实现了 Store 接口
var _ Store = (*Memory)(nil)

// NewMemory 创建内存存储
func NewMemory(bucket, baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "memory://local"
	}
	return &Memory{bucket: bucket, baseURL: baseURL, objects: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

func (m *Memory) Put(ctx context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	m.puts++
	return nil
}

func (m *Memory) URL(key string) string {
	return PublicURL(m.baseURL, m.bucket, key)
}

// Puts 返回 Put 被调用的次数
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
