// Package transcript 按字符数把音频时长分配到播报稿的每一行。
package transcript

import (
	"math"
	"strings"
	"unicode/utf8"

	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
)

// Lines 返回去除首尾空白后的非空行
func Lines(script string) []string {
	var lines []string
	for _, l := range strings.Split(script, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Align 生成字幕片段：每行的时长与其字符数成正比，片段首尾相接，从 0 开始
func Align(script string, duration int) []dm.Segment {
	lines := Lines(script)
	if len(lines) == 0 {
		return nil
	}

	total := 0
	for _, l := range lines {
		total += utf8.RuneCountInString(l)
	}

	segments := make([]dm.Segment, 0, len(lines))
	cursor := 0.0
	for _, l := range lines {
		d := float64(utf8.RuneCountInString(l)) / float64(total) * float64(duration)
		segments = append(segments, dm.Segment{
			Start: int(math.Floor(cursor)),
			End:   int(math.Floor(cursor + d)),
			Text:  l,
		})
		cursor += d
	}
	return segments
}
