package source

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/beacon/internal/model"
	"github.com/hitoshi/beacon/internal/security"
)

// URLValidator はフィードURLの事前検証インターフェース。
// security.SSRFGuardServiceのValidateURLを切り出したもの。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// UpworkAdapter はUpworkの検索結果RSSフィードから案件投稿を取得する。
// フィードURLはオペレーターがUpworkの検索画面で生成したものを
// UPWORK_RSS_URL環境変数で与える。未設定の場合は無効化される。
type UpworkAdapter struct {
	client  *Client
	feedURL string
}

// NewUpworkAdapter はUpworkAdapterを生成する。
// feedURLが空の場合はErrNotConfiguredを返す。SSRF検証も構築時に行う。
func NewUpworkAdapter(client *Client, feedURL string, validator URLValidator) (*UpworkAdapter, error) {
	if feedURL == "" {
		return nil, fmt.Errorf("UPWORK_RSS_URLが未設定です: %w", ErrNotConfigured)
	}
	if err := validator.ValidateURL(feedURL); err != nil {
		return nil, fmt.Errorf("UPWORK_RSS_URLの検証に失敗しました: %w", err)
	}

	return &UpworkAdapter{
		client:  client,
		feedURL: feedURL,
	}, nil
}

// Name はプラットフォーム識別子を返す。
func (a *UpworkAdapter) Name() model.Platform {
	return model.PlatformUpwork
}

// Fetch はRSSフィードの案件投稿を取得する。
// descriptionはHTML断片のため、スコアリング前にテキストへ正規化する。
func (a *UpworkAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	return fetchRSS(ctx, a.client, a.feedURL, model.PlatformUpwork)
}

// fetchRSS はRSSフィードを取得してRawPostに変換する。
// UpworkとProduct Huntで共用する。
func fetchRSS(ctx context.Context, client *Client, feedURL string, platform model.Platform) ([]model.RawPost, error) {
	body, err := client.GetBody(ctx, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("RSSフィードの取得に失敗しました: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("RSSフィードのパースに失敗しました: %w", err)
	}

	posts := make([]model.RawPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		// GUIDを優先し、なければリンクで同一性を判定する
		platformID := item.GUID
		if platformID == "" {
			platformID = item.Link
		}
		if platformID == "" {
			continue
		}

		author := ""
		if item.Author != nil {
			author = item.Author.Name
		}
		if author == "" && len(item.Authors) > 0 && item.Authors[0] != nil {
			author = item.Authors[0].Name
		}
		if author == "" {
			author = "unknown"
		}

		createdAt := time.Now().UTC()
		if item.PublishedParsed != nil {
			createdAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			createdAt = *item.UpdatedParsed
		}

		posts = append(posts, model.RawPost{
			Platform:   platform,
			PlatformID: platformID,
			Title:      item.Title,
			Content:    security.HTMLToText(item.Description),
			Author:     author,
			URL:        item.Link,
			CreatedAt:  createdAt,
		})
	}

	return posts, nil
}

// compile-time interface check
var _ Adapter = (*UpworkAdapter)(nil)
