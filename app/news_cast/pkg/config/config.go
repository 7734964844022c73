package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	TTS      TTSConfig      `yaml:"tts"`
	Storage  StorageConfig  `yaml:"storage"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Script   ScriptConfig   `yaml:"script"`
	Pacing   PacingConfig   `yaml:"pacing"`
	Log      LogConfig      `yaml:"log"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider    string   `yaml:"provider"` // openai 或 gemini
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float32 `yaml:"temperature"` // 未设置时为 0.7，显式的 0 会保留
}

// TTSConfig 语音合成相关配置
type TTSConfig struct {
	APIKey          string  `yaml:"api_key"`
	CredentialsFile string  `yaml:"credentials_file"`
	LanguageCode    string  `yaml:"language_code"`
	Voice           string  `yaml:"voice"`
	SpeakingRate    float64 `yaml:"speaking_rate"`
	ChunkLimit      int     `yaml:"chunk_limit"`      // 单次合成的最大字符数
	Bitrate         int     `yaml:"bitrate"`          // 估算时长用的码率 (bit/s)
	CharsPerSecond  int     `yaml:"chars_per_second"` // 合成失败时估算时长用的语速
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Provider        string `yaml:"provider"` // gcs, postgres, sqlite, memory
	DSN             string `yaml:"dsn"`
	Bucket          string `yaml:"bucket"`
	FeedBucket      string `yaml:"feed_bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
	CredentialsFile string `yaml:"credentials_file"`
	FeedPrefix      string `yaml:"feed_prefix"`
	AudioPrefix     string `yaml:"audio_prefix"`
	BundlePrefix    string `yaml:"bundle_prefix"`
}

// PipelineConfig 流水线参数
type PipelineConfig struct {
	Categories  []string `yaml:"categories"`
	MinArticles int      `yaml:"min_articles"`
	MaxArticles int      `yaml:"max_articles"`
	MinEpisodes int      `yaml:"min_episodes"`
	MaxEpisodes int      `yaml:"max_episodes"`
}

// ScriptConfig 播报稿生成配置
type ScriptConfig struct {
	TargetChars int `yaml:"target_chars"`
}

// PacingConfig 外部调用之间的固定间隔
type PacingConfig struct {
	LLMDelay time.Duration `yaml:"llm_delay"`
	TTSDelay time.Duration `yaml:"tts_delay"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// LoadConfig 从指定路径加载配置，环境变量引用 (${VAR}) 会被展开
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults 填充未设置的默认值
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}
	if c.LLM.Temperature == nil {
		t := float32(0.7)
		c.LLM.Temperature = &t
	}

	if c.TTS.LanguageCode == "" {
		c.TTS.LanguageCode = "cmn-CN"
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = "cmn-CN-Wavenet-A"
	}
	if c.TTS.SpeakingRate == 0 {
		c.TTS.SpeakingRate = 1.0
	}
	if c.TTS.ChunkLimit == 0 {
		c.TTS.ChunkLimit = 2900
	}
	if c.TTS.Bitrate == 0 {
		c.TTS.Bitrate = 32000
	}
	if c.TTS.CharsPerSecond == 0 {
		c.TTS.CharsPerSecond = 5
	}

	if c.Storage.Provider == "" {
		c.Storage.Provider = "gcs"
	}
	if c.Storage.FeedBucket == "" {
		c.Storage.FeedBucket = c.Storage.Bucket
	}
	if c.Storage.FeedPrefix == "" {
		c.Storage.FeedPrefix = "feeds"
	}
	if c.Storage.AudioPrefix == "" {
		c.Storage.AudioPrefix = "audio"
	}
	if c.Storage.BundlePrefix == "" {
		c.Storage.BundlePrefix = "episodes"
	}

	if c.Pipeline.MinArticles == 0 {
		c.Pipeline.MinArticles = 5
	}
	if c.Pipeline.MaxArticles == 0 {
		c.Pipeline.MaxArticles = 10
	}
	if c.Pipeline.MinEpisodes == 0 {
		c.Pipeline.MinEpisodes = 4
	}
	if c.Pipeline.MaxEpisodes == 0 {
		c.Pipeline.MaxEpisodes = 5
	}

	if c.Script.TargetChars == 0 {
		c.Script.TargetChars = 280
	}

	if c.Pacing.LLMDelay == 0 {
		c.Pacing.LLMDelay = 2 * time.Second
	}
	if c.Pacing.TTSDelay == 0 {
		c.Pacing.TTSDelay = time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider: %s", c.LLM.Provider))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}

	if c.TTS.ChunkLimit < 0 || c.TTS.Bitrate < 0 || c.TTS.CharsPerSecond < 0 {
		errs = append(errs, errors.New("tts limits must be positive"))
	}

	switch c.Storage.Provider {
	case "gcs":
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage.bucket is required for gcs"))
		}
	case "postgres", "sqlite":
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn is required for %s", c.Storage.Provider))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown storage provider: %s", c.Storage.Provider))
	}

	if c.Pipeline.MinArticles > c.Pipeline.MaxArticles {
		errs = append(errs, errors.New("pipeline.min_articles must not exceed max_articles"))
	}
	if c.Pipeline.MinEpisodes > c.Pipeline.MaxEpisodes {
		errs = append(errs, errors.New("pipeline.min_episodes must not exceed max_episodes"))
	}

	return errors.Join(errs...)
}
