// Package engine 串联一次每日运行：读取、聚合、生成节目、计算关联并发布。
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/audio"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/cluster"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/graph"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/ingest"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/llm"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/logger"
	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/objectstore"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/pacing"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/publish"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/script"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/transcript"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/tts"
)

// 单个节目的处理阶段
const (
	StageScript     = "script"
	StageAudio      = "audio"
	StageTranscript = "transcript"
)

// Deps 引擎依赖的外部服务
type Deps struct {
	Generator   llm.Generator
	Synthesizer tts.Synthesizer
	FeedStore   objectstore.Store
	MediaStore  objectstore.Store
	// 为空时按配置的间隔创建
	LLMPacer pacing.Pacer
	TTSPacer pacing.Pacer
}

// Engine 每日节目生成引擎
type Engine struct {
	cfg       *config.Config
	ingestor  *ingest.Ingestor
	clusterer *cluster.Clusterer
	writer    *script.Writer
	producer  *audio.Producer
	publisher *publish.Publisher
}

// NewEngine 创建引擎实例
func NewEngine(cfg *config.Config, deps Deps) (*Engine, error) {
	if deps.Generator == nil || deps.Synthesizer == nil || deps.FeedStore == nil || deps.MediaStore == nil {
		return nil, fmt.Errorf("engine: missing dependency")
	}
	copied := *cfg
	cfg = &copied
	cfg.ApplyDefaults()

	llmPacer := deps.LLMPacer
	if llmPacer == nil {
		llmPacer = pacing.NewInterval(cfg.Pacing.LLMDelay)
	}
	ttsPacer := deps.TTSPacer
	if ttsPacer == nil {
		ttsPacer = pacing.NewInterval(cfg.Pacing.TTSDelay)
	}

	return &Engine{
		cfg: cfg,
		ingestor: ingest.New(deps.FeedStore, ingest.Options{
			FeedPrefix:  cfg.Storage.FeedPrefix,
			Categories:  cfg.Pipeline.Categories,
			MinArticles: cfg.Pipeline.MinArticles,
			MaxArticles: cfg.Pipeline.MaxArticles,
		}),
		clusterer: cluster.New(deps.Generator, llmPacer, cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		writer:    script.New(deps.Generator, llmPacer, cfg.Script.TargetChars, cfg.LLM.MaxTokens, cfg.LLM.Temperature),
		producer: audio.New(deps.Synthesizer, deps.MediaStore, ttsPacer, audio.Options{
			Prefix:         cfg.Storage.AudioPrefix,
			ChunkLimit:     cfg.TTS.ChunkLimit,
			Bitrate:        cfg.TTS.Bitrate,
			CharsPerSecond: cfg.TTS.CharsPerSecond,
			Voice: tts.Voice{
				LanguageCode: cfg.TTS.LanguageCode,
				Name:         cfg.TTS.Voice,
				SpeakingRate: cfg.TTS.SpeakingRate,
			},
		}),
		publisher: publish.New(deps.MediaStore, cfg.Storage.BundlePrefix),
	}, nil
}

// SkipReason 记录某个话题未能生成节目的原因
type SkipReason struct {
	Keyword string
	Stage   string
	Err     error
}

func (s SkipReason) Error() string {
	return fmt.Sprintf("%s [%s]: %v", s.Stage, s.Keyword, s.Err)
}

func (s SkipReason) Unwrap() error { return s.Err }

// Result 单个话题的处理结果，Episode 与 Skip 二者只有一个非空
type Result struct {
	Episode *dm.Episode
	Skip    *SkipReason
}

// Report 一次运行的汇总
type Report struct {
	RunID     string
	Date      string
	BundleKey string
	Articles  int
	Clusters  int
	Episodes  []dm.Episode
	Edges     []dm.Edge
	Skipped   []SkipReason
}

// Run 生成并发布 date (YYYY-MM-DD) 当天的节目。只有 Bundle 写入失败或日期非法时返回错误
func (e *Engine) Run(ctx context.Context, date string) (*Report, error) {
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	fallbackDate := day.AddDate(0, 0, -1).Format(time.DateOnly)

	report := &Report{RunID: uuid.NewString(), Date: date}
	log := logger.Log.WithFields(logrus.Fields{"run": report.RunID, "date": date})
	log.Info("开始生成每日节目")

	// 1. 读取文章
	articles := e.ingestor.Select(ctx, date, fallbackDate)
	report.Articles = len(articles)
	log.Infof("共选出 %d 篇文章", len(articles))

	// 2. 话题聚合
	clusters := e.clusterer.Cluster(ctx, articles)
	report.Clusters = len(clusters)

	// 3. 逐个话题生成节目
	target := EpisodeTarget(len(clusters), e.cfg.Pipeline.MinEpisodes, e.cfg.Pipeline.MaxEpisodes)
	keys := publish.NewKeys()
	for _, c := range clusters[:min(target, len(clusters))] {
		res := e.produce(ctx, date, c, keys)
		if res.Skip != nil {
			log.Warnf("跳过话题: %v", res.Skip)
			report.Skipped = append(report.Skipped, *res.Skip)
			continue
		}
		report.Episodes = append(report.Episodes, *res.Episode)
	}

	// 4. 关联关系
	report.Edges = graph.Build(report.Episodes)

	// 5. 发布
	key, err := e.publisher.Publish(ctx, date, report.Episodes, report.Edges)
	if err != nil {
		log.Errorf("发布失败: %v", err)
		return report, fmt.Errorf("publish bundle: %w", err)
	}
	report.BundleKey = key

	log.Infof("运行完成：%d 个节目，跳过 %d 个话题", len(report.Episodes), len(report.Skipped))
	return report, nil
}

// EpisodeTarget 返回目标节目数 min(max(n, lo), hi)
func EpisodeTarget(n, lo, hi int) int {
	return min(max(n, lo), hi)
}

// produce 处理单个话题。所有错误和 panic 都转换为 SkipReason
func (e *Engine) produce(ctx context.Context, date string, c dm.Cluster, keys *publish.Keys) (res Result) {
	stage := StageScript
	defer func() {
		if r := recover(); r != nil {
			res = Result{Skip: &SkipReason{Keyword: c.Keyword, Stage: stage, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	written, err := e.writer.Write(ctx, c)
	if err != nil {
		return Result{Skip: &SkipReason{Keyword: c.Keyword, Stage: stage, Err: err}}
	}

	stage = StageAudio
	key := keys.NormalizeKey(c.Keyword)
	out := e.producer.Produce(ctx, date, key, written.Script)

	stage = StageTranscript
	ep := dm.Episode{
		Keyword:         c.Keyword,
		Title:           written.Title,
		Duration:        out.Duration,
		AudioURL:        out.URL,
		CoverColor:      publish.CoverColor(key),
		CoverImage:      publish.CoverImage(c.Articles),
		RelatedKeywords: c.RelatedKeywords,
		Summary:         written.Summary,
		Transcript:      transcript.Align(written.Script, out.Duration),
		Key:             key,
		ArticleIDs:      c.ArticleIDs(),
		Script:          written.Script,
	}
	logger.Log.WithField("episode", key).Infof("节目生成完成 [%s]，时长 %d 秒", c.Keyword, ep.Duration)
	return Result{Episode: &ep}
}
