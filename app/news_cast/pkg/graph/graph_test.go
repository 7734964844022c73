package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
)

func TestBuild(t *testing.T) {
	episodes := []dm.Episode{
		{Key: "ai_chips", Keyword: "AI Chips", RelatedKeywords: []string{"电动车"}, ArticleIDs: []string{"a", "b"}},
		{Key: "电动车", Keyword: "电动车", ArticleIDs: []string{"c"}},
		{Key: "nvidia", Keyword: "Nvidia", RelatedKeywords: []string{"ai-chips"}, ArticleIDs: []string{"x"}},
		{Key: "fabs", Keyword: "Fabs", ArticleIDs: []string{"b", "c", "d"}},
		{Key: "sports", Keyword: "Sports", ArticleIDs: []string{"z1", "z2", "z3", "z4", "z5", "z6", "z7", "z8", "z9", "d"}},
	}

	edges := Build(episodes)
	assert.Equal(t, []dm.Edge{
		{Source: "ai_chips", Target: "电动车", Strength: DirectStrength, Kind: dm.EdgeDirect},
		{Source: "ai_chips", Target: "nvidia", Strength: DirectStrength, Kind: dm.EdgeDirect},
		{Source: "ai_chips", Target: "fabs", Strength: 0.25, Kind: dm.EdgeOverlap},
		{Source: "电动车", Target: "fabs", Strength: 1.0 / 3, Kind: dm.EdgeOverlap},
	}, edges)
}

func TestBuild_DirectWinsOverOverlap(t *testing.T) {
	edges := Build([]dm.Episode{
		{Key: "a", Keyword: "A", RelatedKeywords: []string{"b"}, ArticleIDs: []string{"1"}},
		{Key: "b", Keyword: "B", ArticleIDs: []string{"1"}},
	})
	assert.Equal(t, []dm.Edge{{Source: "a", Target: "b", Strength: DirectStrength, Kind: dm.EdgeDirect}}, edges)
}

func TestBuild_ThresholdIsExclusive(t *testing.T) {
	// {1..6} 与 {6..10}: 交集 1，并集 10
	a := dm.Episode{Key: "a", Keyword: "A", ArticleIDs: []string{"1", "2", "3", "4", "5", "6"}}
	b := dm.Episode{Key: "b", Keyword: "B", ArticleIDs: []string{"6", "7", "8", "9", "10"}}

	assert.InDelta(t, OverlapThreshold, Jaccard(a.ArticleIDs, b.ArticleIDs), 1e-12)
	assert.Empty(t, Build([]dm.Episode{a, b}))
}

func TestJaccard(t *testing.T) {
	assert.Zero(t, Jaccard(nil, nil))
	assert.Equal(t, 1.0, Jaccard([]string{"a", "a"}, []string{"a"}))
	assert.Equal(t, 0.5, Jaccard([]string{"a", "b"}, []string{"b"}))
	assert.Zero(t, Jaccard([]string{"a"}, []string{"b"}))
}
