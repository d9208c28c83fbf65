package source

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// defaultSubreddits は危機・案件投稿が集まるサブレディット。
var defaultSubreddits = []string{"forhire", "slavelabour", "webdev", "freelance", "techsupport"}

// redditListing はRedditの新着投稿APIレスポンス。
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Author     string  `json:"author"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditAdapter は複数サブレディットの新着投稿を取得する。
// 認証不要の公開JSONエンドポイントを使用する。
type RedditAdapter struct {
	client     *Client
	baseURL    string
	subreddits []string
	pageSize   int
}

// NewRedditAdapter はRedditAdapterを生成する。
func NewRedditAdapter(client *Client) *RedditAdapter {
	return &RedditAdapter{
		client:     client,
		baseURL:    "https://www.reddit.com",
		subreddits: defaultSubreddits,
		pageSize:   25,
	}
}

// Name はプラットフォーム識別子を返す。
func (a *RedditAdapter) Name() model.Platform {
	return model.PlatformReddit
}

// Fetch は各サブレディットの新着投稿を取得する。
// 1つのサブレディットの取得失敗は他のサブレディットの取得を妨げない。
// 全サブレディットが失敗した場合のみエラーを返す。
func (a *RedditAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	var posts []model.RawPost
	var lastErr error
	failures := 0

	for _, sub := range a.subreddits {
		url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", a.baseURL, sub, a.pageSize)

		var listing redditListing
		if err := a.client.GetJSON(ctx, url, nil, &listing); err != nil {
			lastErr = fmt.Errorf("サブレディット %s の取得に失敗しました: %w", sub, err)
			failures++
			continue
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			posts = append(posts, model.RawPost{
				Platform:   model.PlatformReddit,
				PlatformID: post.ID,
				Title:      post.Title,
				Content:    post.Selftext,
				Author:     post.Author,
				URL:        a.baseURL + post.Permalink,
				CreatedAt:  time.Unix(int64(post.CreatedUTC), 0).UTC(),
			})
		}
	}

	if failures == len(a.subreddits) && lastErr != nil {
		return nil, lastErr
	}

	return posts, nil
}

// compile-time interface check
var _ Adapter = (*RedditAdapter)(nil)
