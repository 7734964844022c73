// Package audio 把播报稿分块合成为一段 MP3 并上传到对象存储。
package audio

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/logger"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/objectstore"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/pacing"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/tts"
)

// Options 合成参数
type Options struct {
	Prefix         string
	ChunkLimit     int // 单次请求的最大字符数
	Bitrate        int // 估算时长使用的码率 (bit/s)
	CharsPerSecond int // 合成失败时估算时长使用的语速
	Voice          tts.Voice
}

// Output 合成结果。URL 为空表示音频不可用，此时 Duration 为估算值
type Output struct {
	URL      string
	Duration int
}

// Producer 音频生产者
type Producer struct {
	synth tts.Synthesizer
	store objectstore.Store
	pacer pacing.Pacer
	opts  Options
}

// New 创建音频生产者
func New(synth tts.Synthesizer, store objectstore.Store, pacer pacing.Pacer, opts Options) *Producer {
	if pacer == nil {
		pacer = pacing.None{}
	}
	if opts.ChunkLimit <= 0 {
		opts.ChunkLimit = 2900
	}
	if opts.Bitrate <= 0 {
		opts.Bitrate = 32000
	}
	if opts.CharsPerSecond <= 0 {
		opts.CharsPerSecond = 5
	}
	if opts.Prefix == "" {
		opts.Prefix = "audio"
	}
	return &Producer{synth: synth, store: store, pacer: pacer, opts: opts}
}

// Key 返回节目音频的对象 key
func Key(prefix, date, episode string) string {
	return path.Join(prefix, date, episode+".mp3")
}

// Produce 合成并上传音频。任何失败 (包括 panic) 都退化为无音频和估算时长，不返回错误
func (p *Producer) Produce(ctx context.Context, date, episode, script string) (out Output) {
	log := logger.Log.WithFields(logrus.Fields{"date": date, "episode": episode})
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("音频合成 panic: %v", r)
			out = p.degraded(script)
		}
	}()

	audio, err := p.synthesize(ctx, script)
	if err != nil {
		log.Errorf("音频合成失败: %v", err)
		return p.degraded(script)
	}

	key := Key(p.opts.Prefix, date, episode)
	if err := p.store.Put(ctx, key, audio, "audio/mpeg"); err != nil {
		log.Errorf("音频上传失败 [%s]: %v", key, err)
		return p.degraded(script)
	}

	duration := len(audio) * 8 / p.opts.Bitrate
	log.Infof("音频已上传 [%s]，%d 字节，约 %d 秒", key, len(audio), duration)
	return Output{URL: p.store.URL(key), Duration: duration}
}

func (p *Producer) synthesize(ctx context.Context, script string) ([]byte, error) {
	chunks := Chunk(script, p.opts.ChunkLimit)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	var buf bytes.Buffer
	for i, chunk := range chunks {
		if err := p.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pacer wait: %w", err)
		}
		data, err := p.synth.Synthesize(ctx, chunk, p.opts.Voice)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("chunk %d/%d: empty audio", i+1, len(chunks))
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

func (p *Producer) degraded(script string) Output {
	return Output{Duration: EstimateDuration(script, p.opts.CharsPerSecond)}
}

// EstimateDuration 按字符数和语速估算时长 (秒)
func EstimateDuration(script string, charsPerSecond int) int {
	if charsPerSecond <= 0 {
		return 0
	}
	return len([]rune(script)) / charsPerSecond
}

// Chunk 按字符 (rune) 把文本切分为不超过 limit 的连续片段，拼接后与原文相同
func Chunk(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if limit <= 0 || len(runes) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
