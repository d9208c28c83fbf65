package source

import (
	"context"

	"github.com/hitoshi/beacon/internal/model"
)

// ProductHuntAdapter はProduct Huntの公開RSSフィードから新着ローンチを取得する。
// ローンチ直後のプロダクトは技術的な支援を探していることが多く、
// 案件シグナルの候補になる。
type ProductHuntAdapter struct {
	client  *Client
	feedURL string
}

// NewProductHuntAdapter はProductHuntAdapterを生成する。
func NewProductHuntAdapter(client *Client) *ProductHuntAdapter {
	return &ProductHuntAdapter{
		client:  client,
		feedURL: "https://www.producthunt.com/feed",
	}
}

// Name はプラットフォーム識別子を返す。
func (a *ProductHuntAdapter) Name() model.Platform {
	return model.PlatformProductHunt
}

// Fetch はRSSフィードの新着ローンチを取得する。
func (a *ProductHuntAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	return fetchRSS(ctx, a.client, a.feedURL, model.PlatformProductHunt)
}

// compile-time interface check
var _ Adapter = (*ProductHuntAdapter)(nil)
