package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogle(context.Background(), config.TTSConfig{},
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return g
}

func TestGoogle_Synthesize(t *testing.T) {
	var got map[string]any
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text:synthesize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"audioContent": base64.StdEncoding.EncodeToString([]byte("ID3mp3")),
		})
	})

	audio, err := g.Synthesize(context.Background(), "大家好", Voice{LanguageCode: "cmn-CN", Name: "cmn-CN-Wavenet-A", SpeakingRate: 1.1})
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3mp3"), audio)

	assert.Equal(t, map[string]any{"text": "大家好"}, got["input"])
	assert.Equal(t, "MP3", got["audioConfig"].(map[string]any)["audioEncoding"])
	assert.Equal(t, "cmn-CN-Wavenet-A", got["voice"].(map[string]any)["name"])
}

func TestGoogle_SynthesizeError(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota"}}`, http.StatusTooManyRequests)
	})

	_, err := g.Synthesize(context.Background(), "x", Voice{})
	assert.Error(t, err)
}

func TestGoogle_SynthesizeEmptyAudio(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := g.Synthesize(context.Background(), "x", Voice{})
	assert.Error(t, err)
}
