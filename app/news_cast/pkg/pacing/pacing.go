// Package pacing 控制相邻外部调用 (LLM、TTS) 之间的间隔。
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer 在每次外部调用前调用 Wait
type Pacer interface {
	Wait(ctx context.Context) error
}

// Interval 基于令牌桶的固定间隔：第一次调用立即放行，之后相邻两次调用的开始时间至少间隔 interval，调用结束后不再额外等待
type Interval struct {
	limiter *rate.Limiter
}

// NewInterval 创建固定间隔的 Pacer，interval <= 0 时不做限制
func NewInterval(interval time.Duration) *Interval {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Interval{limiter: rate.NewLimiter(limit, 1)}
}

// Wait 等待下一个令牌
func (p *Interval) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// None 不做任何等待，用于测试
type None struct{}

// Wait 立即返回
func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}
