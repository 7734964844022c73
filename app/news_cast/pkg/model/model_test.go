package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle_MarshalJSON_Shape(t *testing.T) {
	b := Bundle{
		Episodes: map[string]Episode{
			"ai_chips": {
				Keyword:    "AI Chips",
				Title:      "芯片新战局",
				Duration:   42,
				ArticleIDs: []string{"2026-03-01-0"},
				Transcript: []Segment{{Start: 0, End: 42, Text: "大家好"}},
			},
		},
		Connections: []Edge{{Source: "ai_chips", Target: "ev", Strength: 0.8, Kind: EdgeDirect}},
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)

	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	require.Contains(t, top, ConnectionsKey)
	require.Contains(t, top, "ai_chips")

	var ep map[string]any
	require.NoError(t, json.Unmarshal(top["ai_chips"], &ep))
	assert.Equal(t, "", ep["audioUrl"])
	assert.Equal(t, []any{}, ep["relatedKeywords"])
	assert.NotContains(t, ep, "ArticleIDs")
	assert.Equal(t, map[string]any{"keyPoints": []any{}, "stats": []any{}, "topics": []any{}}, ep["summary"])

	assert.JSONEq(t, `[{"source":"ai_chips","target":"ev","strength":0.8}]`, string(top[ConnectionsKey]))
}

func TestBundle_EmptyStillHasConnections(t *testing.T) {
	data, err := json.Marshal(Bundle{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_connections":[]}`, string(data))
}

func TestBundle_UnmarshalJSON(t *testing.T) {
	in := `{"ev":{"keyword":"EV","title":"t","duration":3,"audioUrl":"","coverColor":"#fff","coverImage":"",
		"relatedKeywords":["AI"],"summary":{"keyPoints":[],"stats":[{"number":"3","label":"x"}],"topics":[]},
		"transcript":[{"start":0,"end":3,"text":"a"}]},"_connections":[]}`

	var b Bundle
	require.NoError(t, json.Unmarshal([]byte(in), &b))
	require.Len(t, b.Episodes, 1)
	assert.Equal(t, "ev", b.Episodes["ev"].Key)
	assert.Equal(t, []Stat{{Number: "3", Label: "x"}}, b.Episodes["ev"].Summary.Stats)
	assert.Empty(t, b.Connections)
}

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct{ in, want string }{
		{"AI Chips", "ai_chips"},
		{"  --GPT-5!! ", "gpt_5"},
		{"新能源 汽车", "新能源_汽车"},
		{"___", ""},
		{"_connections", "connections"},
		{"Apple / Vision", "apple_vision"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeKeyword(tt.in), tt.in)
	}
}
