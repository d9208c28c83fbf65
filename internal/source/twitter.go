package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// twitterSearchQuery は採用・危機系のツイートを拾う検索クエリ。
// リツイートは同一内容の重複になるため除外する。
const twitterSearchQuery = `("need a developer" OR "looking for a developer" OR "site is down" OR "will pay") -is:retweet lang:en`

// twitterSearchResult はTwitter API v2の最近検索レスポンス。
type twitterSearchResult struct {
	Data []struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		AuthorID  string    `json:"author_id"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

// TwitterAdapter はTwitter API v2の最近検索エンドポイントから投稿を取得する。
// Bearerトークンが必須。未設定の場合は無効化される。
// 無料枠のレート制限が厳しいため、デフォルトのスキャン間隔は6時間。
type TwitterAdapter struct {
	client      *Client
	baseURL     string
	bearerToken string
	pageSize    int
}

// NewTwitterAdapter はTwitterAdapterを生成する。
// bearerTokenが空の場合はErrNotConfiguredを返す。
func NewTwitterAdapter(client *Client, bearerToken string) (*TwitterAdapter, error) {
	if bearerToken == "" {
		return nil, fmt.Errorf("TWITTER_BEARER_TOKENが未設定です: %w", ErrNotConfigured)
	}

	return &TwitterAdapter{
		client:      client,
		baseURL:     "https://api.twitter.com",
		bearerToken: bearerToken,
		pageSize:    20,
	}, nil
}

// Name はプラットフォーム識別子を返す。
func (a *TwitterAdapter) Name() model.Platform {
	return model.PlatformTwitter
}

// Fetch は検索クエリに一致する最近のツイートを取得する。
// ツイートには独立したタイトルがないため、本文をタイトルとして使用する。
func (a *TwitterAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	reqURL := fmt.Sprintf("%s/2/tweets/search/recent?query=%s&max_results=%d&tweet.fields=created_at,author_id&expansions=author_id&user.fields=username",
		a.baseURL, url.QueryEscape(twitterSearchQuery), a.pageSize)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+a.bearerToken)

	var result twitterSearchResult
	if err := a.client.GetJSON(ctx, reqURL, header, &result); err != nil {
		return nil, fmt.Errorf("Twitter検索に失敗しました: %w", err)
	}

	usernames := make(map[string]string, len(result.Includes.Users))
	for _, user := range result.Includes.Users {
		usernames[user.ID] = user.Username
	}

	posts := make([]model.RawPost, 0, len(result.Data))
	for _, tweet := range result.Data {
		author := usernames[tweet.AuthorID]
		if author == "" {
			author = tweet.AuthorID
		}
		posts = append(posts, model.RawPost{
			Platform:   model.PlatformTwitter,
			PlatformID: tweet.ID,
			Title:      tweet.Text,
			Content:    "",
			Author:     author,
			URL:        "https://twitter.com/" + author + "/status/" + tweet.ID,
			CreatedAt:  tweet.CreatedAt,
		})
	}

	return posts, nil
}

// compile-time interface check
var _ Adapter = (*TwitterAdapter)(nil)
