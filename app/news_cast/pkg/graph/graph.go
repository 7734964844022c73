// Package graph 计算节目之间的关联关系，仅用于展示。
package graph

import (
	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
)

const (
	// DirectStrength 关键词直接关联的强度
	DirectStrength = 0.8
	// OverlapThreshold 文章重叠度需要超过该值才产生关联
	OverlapThreshold = 0.1
)

// Build 对每一对节目 (i<j) 计算关联。Source/Target 使用节目的 Key
func Build(episodes []dm.Episode) []dm.Edge {
	var edges []dm.Edge
	for i := 0; i < len(episodes); i++ {
		for j := i + 1; j < len(episodes); j++ {
			a, b := episodes[i], episodes[j]
			if mentions(a, b) || mentions(b, a) {
				edges = append(edges, dm.Edge{Source: a.Key, Target: b.Key, Strength: DirectStrength, Kind: dm.EdgeDirect})
				continue
			}
			if sim := Jaccard(a.ArticleIDs, b.ArticleIDs); sim > OverlapThreshold {
				edges = append(edges, dm.Edge{Source: a.Key, Target: b.Key, Strength: sim, Kind: dm.EdgeOverlap})
			}
		}
	}
	return edges
}

// mentions 判断 from 的关联关键词中是否包含 to 的关键词
func mentions(from, to dm.Episode) bool {
	target := dm.NormalizeKeyword(to.Keyword)
	if target == "" {
		return false
	}
	for _, k := range from.RelatedKeywords {
		if dm.NormalizeKeyword(k) == target {
			return true
		}
	}
	return false
}

// Jaccard 返回两个集合的交集大小与并集大小之比，并集为空时为 0
func Jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	union := len(set)
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		if seen[s] {
			continue
		}
		seen[s] = true
		if set[s] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
