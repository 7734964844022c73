package tts

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

// Google Cloud Text-to-Speech 客户端
type Google struct {
	svc *texttospeech.Service
}

// 确保 Google 实现了 Synthesizer 接口
var _ Synthesizer = (*Google)(nil)

// NewGoogle 创建 Google TTS 客户端，优先使用 API Key，其次使用凭据文件
func NewGoogle(ctx context.Context, cfg config.TTSConfig, opts ...option.ClientOption) (*Google, error) {
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create tts service: %w", err)
	}
	return &Google{svc: svc}, nil
}

// Synthesize 合成一段文本，返回 MP3 字节
func (g *Google) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  voice.SpeakingRate,
		},
	}

	resp, err := g.svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesize: empty audio")
	}
	return audio, nil
}
