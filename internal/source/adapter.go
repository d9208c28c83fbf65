// Package source は外部プラットフォームから投稿を取得するアダプターを提供する。
//
// 各アダプターはプラットフォーム固有のAPIレスポンスをmodel.RawPostに変換する
// ことだけを責務とし、スコアリング・フィルタリング・永続化には関与しない。
// 新しいプラットフォームはAdapterを実装してregistry.goに登録することで追加する。
package source

import (
	"context"
	"errors"

	"github.com/hitoshi/beacon/internal/model"
)

// ErrNotConfigured は認証情報等の不足によりアダプターを構築できないことを表す。
// このエラーを受けたソースは無効化され、ワーカーは起動しない。
// プロセス全体の起動は妨げない。
var ErrNotConfigured = errors.New("ソースが設定されていません")

// Adapter は単一プラットフォームからの投稿取得インターフェース。
type Adapter interface {
	// Name はプラットフォーム識別子を返す。
	Name() model.Platform

	// Fetch はプラットフォームから最新の投稿を取得してRawPostに変換する。
	// 返される投稿の順序はプラットフォームのAPIに依存し、呼び出し側で
	// 順序に依存してはならない。部分的な取得成功は許容される。
	Fetch(ctx context.Context) ([]model.RawPost, error)
}
