package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// stackoverflowSearchResult はStack Exchange検索APIのレスポンス。
type stackoverflowSearchResult struct {
	Items []struct {
		QuestionID int64  `json:"question_id"`
		Title      string `json:"title"`
		Body       string `json:"body"`
		Link       string `json:"link"`
		Owner      struct {
			DisplayName string `json:"display_name"`
		} `json:"owner"`
		CreationDate int64 `json:"creation_date"`
	} `json:"items"`
}

// StackOverflowAdapter はStack Exchange APIから新着質問を取得する。
// 認証不要だが、未認証のクォータ（300リクエスト/日）があるため
// スキャン間隔は広めに設定する。
type StackOverflowAdapter struct {
	client   *Client
	baseURL  string
	query    string
	pageSize int
}

// NewStackOverflowAdapter はStackOverflowAdapterを生成する。
func NewStackOverflowAdapter(client *Client) *StackOverflowAdapter {
	return &StackOverflowAdapter{
		client:   client,
		baseURL:  "https://api.stackexchange.com",
		query:    "urgent help production",
		pageSize: 25,
	}
}

// Name はプラットフォーム識別子を返す。
func (a *StackOverflowAdapter) Name() model.Platform {
	return model.PlatformStackOverflow
}

// Fetch は検索語に一致する新着質問を本文付きで取得する。
// 質問本文はHTMLで返されるため、取り込み側でテキストに正規化される。
func (a *StackOverflowAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	reqURL := fmt.Sprintf("%s/2.3/search/advanced?order=desc&sort=creation&site=stackoverflow&pagesize=%d&filter=withbody&q=%s",
		a.baseURL, a.pageSize, url.QueryEscape(a.query))

	var result stackoverflowSearchResult
	if err := a.client.GetJSON(ctx, reqURL, nil, &result); err != nil {
		return nil, fmt.Errorf("Stack Overflow検索に失敗しました: %w", err)
	}

	posts := make([]model.RawPost, 0, len(result.Items))
	for _, item := range result.Items {
		author := item.Owner.DisplayName
		if author == "" {
			author = "anonymous"
		}
		posts = append(posts, model.RawPost{
			Platform:   model.PlatformStackOverflow,
			PlatformID: strconv.FormatInt(item.QuestionID, 10),
			Title:      item.Title,
			Content:    item.Body,
			Author:     author,
			URL:        item.Link,
			CreatedAt:  time.Unix(item.CreationDate, 0).UTC(),
		})
	}

	return posts, nil
}

// compile-time interface check
var _ Adapter = (*StackOverflowAdapter)(nil)
