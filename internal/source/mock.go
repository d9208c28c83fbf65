package source

import (
	"context"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// MockAdapter は外部APIに依存しない決定的なテスト用アダプター。
// 開発環境での動作確認と取り込みパイプラインのテストに使用する。
type MockAdapter struct {
	now func() time.Time
}

// NewMockAdapter はMockAdapterを生成する。
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{now: time.Now}
}

// Name はプラットフォーム識別子を返す。
func (a *MockAdapter) Name() model.Platform {
	return model.PlatformMock
}

// Fetch は固定の投稿を返す。PlatformIDが固定のため、2回目以降の
// 取り込みは重複として扱われる。
func (a *MockAdapter) Fetch(ctx context.Context) ([]model.RawPost, error) {
	now := a.now().UTC()
	return []model.RawPost{
		{
			Platform:   model.PlatformMock,
			PlatformID: "mock-crisis-1",
			Title:      "Urgent: production site is down",
			Content:    "Our react app is broken, will pay for a quick fix. Budget: $500",
			Author:     "mock_user",
			URL:        "",
			CreatedAt:  now,
		},
		{
			Platform:   model.PlatformMock,
			PlatformID: "mock-opportunity-1",
			Title:      "Looking to hire a freelancer for a website build",
			Content:    "Need a custom wordpress site, budget of $2,000",
			Author:     "mock_client",
			URL:        "",
			CreatedAt:  now,
		},
	}, nil
}

// compile-time interface check
var _ Adapter = (*MockAdapter)(nil)
