package tts

import "context"

// Voice 语音参数
type Voice struct {
	LanguageCode string
	Name         string
	SpeakingRate float64
}

// Synthesizer 把文本转换为音频字节 (MP3)
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}
