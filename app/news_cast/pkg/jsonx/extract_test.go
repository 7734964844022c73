package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type payload struct {
	Name string `json:"name"`
}

func TestExtract(t *testing.T) {
	fallback := payload{Name: "fallback"}

	tests := []struct {
		name   string
		text   string
		want   string
		parsed bool
	}{
		{"plain", `{"name":"a"}`, "a", true},
		{"markdown fence", "```json\n{\"name\":\"b\"}\n```", "b", true},
		{"chatter around", "好的，结果如下：{\"name\":\"c\"} 希望有帮助", "c", true},
		{"no braces", "抱歉，我无法完成", "fallback", false},
		{"reversed braces", "} oops {", "fallback", false},
		{"broken json", `{"name": }`, "fallback", false},
		{"empty", "", "fallback", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Extract(tt.text, fallback)
			assert.Equal(t, tt.parsed, res.Parsed)
			assert.Equal(t, tt.want, res.Value.Name)
			if !tt.parsed {
				assert.Error(t, res.Err)
			}
		})
	}
}
