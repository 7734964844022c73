// Package ingest 读取某一天的原始新闻源，按分类过滤，不足时用前一天补齐。
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/news_cast/app/news_cast/pkg/logger"
	dm "github.com/iWorld-y/news_cast/app/news_cast/pkg/model"
	"github.com/iWorld-y/news_cast/app/news_cast/pkg/objectstore"
)

// Options 抓取选项
type Options struct {
	FeedPrefix  string
	Categories  []string // 为空时不过滤
	MinArticles int      // 少于该数量时回填前一天
	MaxArticles int
}

// Ingestor 新闻源读取器
type Ingestor struct {
	store      objectstore.Store
	opts       Options
	categories map[string]struct{}
	parser     *gofeed.Parser
}

// New 创建读取器
func New(store objectstore.Store, opts Options) *Ingestor {
	if opts.MinArticles <= 0 {
		opts.MinArticles = 5
	}
	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 10
	}
	cats := make(map[string]struct{}, len(opts.Categories))
	for _, c := range opts.Categories {
		cats[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	return &Ingestor{store: store, opts: opts, categories: cats, parser: gofeed.NewParser()}
}

// FeedKey 返回某天新闻源的对象 key
func FeedKey(prefix, date string) string {
	return strings.Trim(prefix, "/") + "/" + date + ".xml"
}

// Select 选出当天的文章；不足 MinArticles 时追加前一天的文章，总数不超过 MaxArticles
func (in *Ingestor) Select(ctx context.Context, date, fallbackDate string) []dm.Article {
	articles := in.Fetch(ctx, date)
	if len(articles) >= in.opts.MinArticles {
		if len(articles) > in.opts.MaxArticles {
			articles = articles[:in.opts.MaxArticles]
		}
		return articles
	}

	logger.Log.WithFields(logrus.Fields{"date": date, "count": len(articles)}).
		Infof("当天文章不足 %d 篇，使用 %s 回填", in.opts.MinArticles, fallbackDate)

	previous := in.Fetch(ctx, fallbackDate)
	room := max(in.opts.MaxArticles-len(articles), 0)
	if len(previous) > room {
		previous = previous[:room]
	}
	return append(articles, previous...)
}

// Fetch 读取并过滤一天的文章。新闻源缺失或无法解析时返回空列表
func (in *Ingestor) Fetch(ctx context.Context, date string) []dm.Article {
	key := FeedKey(in.opts.FeedPrefix, date)
	body, err := in.store.Get(ctx, key)
	if errors.Is(err, objectstore.ErrNotFound) {
		logger.Log.Infof("新闻源不存在 [%s]", key)
		return nil
	}
	if err != nil {
		logger.Log.Errorf("读取新闻源失败 [%s]: %v", key, err)
		return nil
	}

	articles, err := in.parse(body, date)
	if err != nil {
		logger.Log.Errorf("解析新闻源失败 [%s]: %v", key, err)
		return nil
	}
	return articles
}

func (in *Ingestor) parse(body []byte, date string) ([]dm.Article, error) {
	feed, err := in.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var articles []dm.Article
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		category := firstCategory(item)
		if !in.eligible(category) {
			continue
		}

		content := item.Content
		if strings.TrimSpace(content) == "" {
			content = item.Description
		}

		articles = append(articles, dm.Article{
			ID:           fmt.Sprintf("%s-%d", date, len(articles)),
			Title:        strings.TrimSpace(item.Title),
			Content:      toText(content, item.Link),
			Image:        imageURL(item),
			Date:         date,
			CategoryCode: category,
		})
	}
	return articles, nil
}

func (in *Ingestor) eligible(category string) bool {
	if len(in.categories) == 0 {
		return true
	}
	_, ok := in.categories[strings.ToLower(category)]
	return ok
}

func firstCategory(item *gofeed.Item) string {
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func imageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// toText 把 HTML 正文转换为纯文本，readability 提取失败时退回到 goquery 取文字
func toText(content, link string) string {
	content = strings.TrimSpace(content)
	if !strings.Contains(content, "<") {
		return content
	}

	pageURL, err := url.Parse(link)
	if err != nil || pageURL.Host == "" {
		pageURL = &url.URL{Scheme: "https", Host: "feed.local"}
	}
	article, err := readability.FromReader(strings.NewReader(content), pageURL)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return htmlText(content)
}

// htmlText 用 goquery 取出文档中的文字，忽略脚本和样式
func htmlText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
