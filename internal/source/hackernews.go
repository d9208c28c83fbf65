package source

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// hackernewsSearchResult はAlgolia HN検索APIのレスポンス。
type hackernewsSearchResult struct {
	Hits []struct {
		ObjectID   string `json:"objectID"`
		Title      string `json:"title"`
		StoryText  string `json:"story_text"`
		URL        string `json:"url"`
		Author     string `json:"author"`
		CreatedAtI int64  `json:"created_at_i"`
	} `json:"hits"`
}

// HackerNewsAdapter はAlgolia HN検索APIから新着ストーリーを取得する。
// 公式Firebase APIは1件ずつの取得しかできないため、新着検索が
// 1リクエストで済むAlgoliaのエンドポイントを使用する。
type HackerNewsAdapter struct {
	client   *Client
	baseURL  string
	query    string
	pageSize int
}

// NewHackerNewsAdapter はHackerNewsAdapterを生成する。
func NewHackerNewsAdapter(client *Client) *HackerNewsAdapter {
	return &HackerNewsAdapter{
		client:   client,
		baseURL:  "https://hn.algolia.com",
		query:    "looking for developer",
		pageSize: 30,
	}
}

// Name はプラットフォーム識別子を返す。
func (a *HackerNewsAdapter) Name() model.Platform {
	return model.PlatformHackerNews
}

// Fetch は検索語に一致する新着ストーリーを取得する。
func (a *HackerNewsAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	reqURL := fmt.Sprintf("%s/api/v1/search_by_date?tags=(story,ask_hn)&query=%s&hitsPerPage=%d",
		a.baseURL, url.QueryEscape(a.query), a.pageSize)

	var result hackernewsSearchResult
	if err := a.client.GetJSON(ctx, reqURL, nil, &result); err != nil {
		return nil, fmt.Errorf("Hacker News検索に失敗しました: %w", err)
	}

	posts := make([]model.RawPost, 0, len(result.Hits))
	for _, hit := range result.Hits {
		postURL := hit.URL
		if postURL == "" {
			// Ask HN等の外部リンクなしストーリーはHN上のURLを使う
			postURL = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}
		posts = append(posts, model.RawPost{
			Platform:   model.PlatformHackerNews,
			PlatformID: hit.ObjectID,
			Title:      hit.Title,
			Content:    hit.StoryText,
			Author:     hit.Author,
			URL:        postURL,
			CreatedAt:  time.Unix(hit.CreatedAtI, 0).UTC(),
		})
	}

	return posts, nil
}

// compile-time interface check
var _ Adapter = (*HackerNewsAdapter)(nil)
