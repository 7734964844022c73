// Package jsonx 从 LLM 的自由文本输出中尽力提取 JSON。
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoObject 文本中没有可识别的 JSON 对象
var ErrNoObject = errors.New("no json object in text")

// Result 提取结果：Parsed 为 true 时 Value 来自文本，否则 Value 为调用方给出的兜底值
type Result[T any] struct {
	Value  T
	Parsed bool
	Err    error
}

// Extract 截取文本中第一个 '{' 到最后一个 '}' 之间的内容并解析为 T。
// 任何失败都返回 fallback，不会 panic。
func Extract[T any](text string, fallback T) Result[T] {
	body, err := Object(text)
	if err != nil {
		return Result[T]{Value: fallback, Err: err}
	}

	var v T
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return Result[T]{Value: fallback, Err: err}
	}
	return Result[T]{Value: v, Parsed: true}
}

// Object 返回文本中第一个 '{' 与最后一个 '}' 之间 (含) 的子串
func Object(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", ErrNoObject
	}
	return text[start : end+1], nil
}
