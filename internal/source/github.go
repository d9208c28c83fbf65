package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// githubSearchQuery は危機・案件系のIssueを広めに拾う検索クエリ。
// スコアリングで絞り込むため、ここでは取りこぼしを避ける側に倒す。
const githubSearchQuery = `"help wanted" OR "urgent" OR "will pay" in:title,body is:issue is:open`

// githubSearchResult はGitHub Issue検索APIのレスポンス。
type githubSearchResult struct {
	Items []struct {
		ID      int64  `json:"id"`
		Title   string `json:"title"`
		Body    string `json:"body"`
		HTMLURL string `json:"html_url"`
		User    struct {
			Login string `json:"login"`
		} `json:"user"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"items"`
}

// GitHubAdapter はGitHubのIssue検索APIから投稿を取得する。
// トークンは任意。未設定の場合は未認証のレート制限（60リクエスト/時）で動作する。
type GitHubAdapter struct {
	client   *Client
	baseURL  string
	token    string
	pageSize int
}

// NewGitHubAdapter はGitHubAdapterを生成する。
func NewGitHubAdapter(client *Client, token string) *GitHubAdapter {
	return &GitHubAdapter{
		client:   client,
		baseURL:  "https://api.github.com",
		token:    token,
		pageSize: 20,
	}
}

// Name はプラットフォーム識別子を返す。
func (a *GitHubAdapter) Name() model.Platform {
	return model.PlatformGitHub
}

// Fetch は検索クエリに一致する新着Issueを取得する。
func (a *GitHubAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	reqURL := fmt.Sprintf("%s/search/issues?q=%s&sort=created&order=desc&per_page=%d",
		a.baseURL, url.QueryEscape(githubSearchQuery), a.pageSize)

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	if a.token != "" {
		header.Set("Authorization", "Bearer "+a.token)
	}

	var result githubSearchResult
	if err := a.client.GetJSON(ctx, reqURL, header, &result); err != nil {
		return nil, fmt.Errorf("GitHub Issue検索に失敗しました: %w", err)
	}

	posts := make([]model.RawPost, 0, len(result.Items))
	for _, item := range result.Items {
		posts = append(posts, model.RawPost{
			Platform:   model.PlatformGitHub,
			PlatformID: strconv.FormatInt(item.ID, 10),
			Title:      item.Title,
			Content:    item.Body,
			Author:     item.User.Login,
			URL:        item.HTMLURL,
			CreatedAt:  item.CreatedAt,
		})
	}

	return posts, nil
}

// compile-time interface check
var _ Adapter = (*GitHubAdapter)(nil)
