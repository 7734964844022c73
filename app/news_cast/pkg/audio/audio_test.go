package audio

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/objectstore"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/tts"
)

// fakeSynth 依次返回 replies 中的结果
type fakeSynth struct {
	replies []func() ([]byte, error)
	texts   []string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, voice tts.Voice) ([]byte, error) {
	f.texts = append(f.texts, text)
	i := len(f.texts) - 1
	if i >= len(f.replies) {
		return nil, errors.New("unexpected call")
	}
	return f.replies[i]()
}

func bytesOf(n int) func() ([]byte, error) {
	return filled(0, n)
}

func filled(b byte, n int) func() ([]byte, error) {
	return func() ([]byte, error) { return bytes.Repeat([]byte{b}, n), nil }
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name   string
		length int
		limit  int
		want   int
	}{
		{"empty", 0, 10, 0},
		{"under limit", 9, 10, 1},
		{"exact", 10, 10, 1},
		{"one over", 11, 10, 2},
		{"long script", 5000, 2900, 2},
		{"many", 9001, 3000, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := strings.Repeat("新", tt.length)
			chunks := Chunk(text, tt.limit)
			require.Len(t, chunks, tt.want)
			assert.Equal(t, text, strings.Join(chunks, ""))
			for _, c := range chunks {
				assert.LessOrEqual(t, len([]rune(c)), tt.limit)
			}
		})
	}
}

func TestProduce_ConcatenatesAndUploads(t *testing.T) {
	store := objectstore.NewMemory("media", "https://cdn.example.com")
	synth := &fakeSynth{replies: []func() ([]byte, error){filled(1, 40000), filled(2, 40000)}}
	p := New(synth, store, nil, Options{ChunkLimit: 2900})

	script := strings.Repeat("播", 5000)
	out := p.Produce(context.Background(), "2026-03-02", "ai_chips", script)

	assert.Equal(t, "https://cdn.example.com/media/audio/2026-03-02/ai_chips.mp3", out.URL)
	assert.Equal(t, 20, out.Duration) // 80000 * 8 / 32000
	require.Len(t, synth.texts, 2)
	assert.Equal(t, 2900, len([]rune(synth.texts[0])))
	assert.Equal(t, 2100, len([]rune(synth.texts[1])))

	body, err := store.Get(context.Background(), "audio/2026-03-02/ai_chips.mp3")
	require.NoError(t, err)
	want := append(bytes.Repeat([]byte{1}, 40000), bytes.Repeat([]byte{2}, 40000)...)
	assert.Equal(t, want, body, "chunks must be joined in script order")
}

func TestProduce_Degrades(t *testing.T) {
	script := strings.Repeat("播", 5000)
	tests := []struct {
		name    string
		replies []func() ([]byte, error)
	}{
		{"second chunk fails", []func() ([]byte, error){bytesOf(100), func() ([]byte, error) { return nil, errors.New("500") }}},
		{"empty audio", []func() ([]byte, error){bytesOf(100), bytesOf(0)}},
		{"panic", []func() ([]byte, error){func() ([]byte, error) { panic("client bug") }}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := objectstore.NewMemory("media", "")
			p := New(&fakeSynth{replies: tt.replies}, store, nil, Options{})

			out := p.Produce(context.Background(), "2026-03-02", "ai", script)
			assert.Empty(t, out.URL)
			assert.Equal(t, 1000, out.Duration)
			assert.Zero(t, store.Puts())
		})
	}
}

type brokenStore struct{ *objectstore.Memory }

func (brokenStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return errors.New("bucket gone")
}

func TestProduce_UploadFailureDegrades(t *testing.T) {
	store := brokenStore{objectstore.NewMemory("media", "")}
	p := New(&fakeSynth{replies: []func() ([]byte, error){bytesOf(10)}}, store, nil, Options{CharsPerSecond: 4})

	out := p.Produce(context.Background(), "2026-03-02", "ai", "一二三四五六七八九")
	assert.Equal(t, Output{Duration: 2}, out)
}
