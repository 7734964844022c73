package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/config"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/engine"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/llm"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/logger"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/objectstore"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/tts"
)

func newRunCommand(configPath *string) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "生成并发布某一天的节目",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format(time.DateOnly)
			}
			return run(cmd.Context(), *configPath, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to publish (YYYY-MM-DD), defaults to today")
	return cmd
}

func run(ctx context.Context, configPath, date string) error {
	// 1. 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("无法加载配置文件: %w", err)
	}

	// 2. 初始化日志
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("无法初始化日志: %w", err)
	}
	logger.Log.Info("启动新闻播客生成...")

	// 3. 初始化外部服务
	gen, err := llm.NewGenerator(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer closeIfCloser(gen)

	synth, err := tts.NewGoogle(ctx, cfg.TTS)
	if err != nil {
		return err
	}

	feeds, media, err := openStores(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeIfCloser(media)
	if feeds != media {
		defer closeIfCloser(feeds)
	}

	// 4. 运行
	e, err := engine.NewEngine(cfg, engine.Deps{
		Generator:   gen,
		Synthesizer: synth,
		FeedStore:   feeds,
		MediaStore:  media,
	})
	if err != nil {
		return err
	}

	report, err := e.Run(ctx, date)
	if err != nil {
		return err
	}
	logger.Log.Infof("已发布 %s：%d 个节目，%d 条关联", report.BundleKey, len(report.Episodes), len(report.Edges))
	return nil
}

// openStores 创建新闻源和媒体存储。memory 后端只在进程内有效，两者共用同一个实例
func openStores(ctx context.Context, cfg config.StorageConfig) (feeds, media objectstore.Store, err error) {
	media, err = objectstore.New(ctx, cfg, cfg.Bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("媒体存储初始化失败: %w", err)
	}
	if cfg.Provider == "memory" {
		return media, media, nil
	}

	feeds, err = objectstore.New(ctx, cfg, cfg.FeedBucket)
	if err != nil {
		closeIfCloser(media)
		return nil, nil, fmt.Errorf("新闻源存储初始化失败: %w", err)
	}
	return feeds, media, nil
}

func closeIfCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		if err := c.Close(); err != nil {
			logger.Log.Warnf("关闭资源失败: %v", err)
		}
	}
}
