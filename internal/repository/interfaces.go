// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// SignalRepository はシグナルデータの永続化インターフェース。
// (platform, platform_id) をキーとした冪等な取り込みとトリアージ更新を提供する。
type SignalRepository interface {
	// Upsert はシグナルを保存する。(platform, platform_id) が既存の場合は
	// 何も変更せずcreated=falseを返す。新規保存時はcreated=trueを返し、
	// signalのID、DetectedAt、UpdatedAtが設定される。
	Upsert(ctx context.Context, signal *model.Signal) (created bool, err error)

	// FindByID は指定IDのシグナルを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Signal, error)

	// List はフィルタ条件に一致するシグナル一覧を返す。
	// urgency_score降順、同点はdetected_at降順で並ぶ。
	List(ctx context.Context, filter model.SignalFilter) ([]*model.Signal, error)

	// UpdateTriage はトリアージフィールドを部分更新する。
	// nilのフィールドは変更しない。statusがcontactedに遷移したとき
	// contacted_atを、wonに遷移したときwon_atを初回のみ記録する。
	// 見つからない場合はnilを返す。
	UpdateTriage(ctx context.Context, id string, update model.TriageUpdate) (*model.Signal, error)

	// Delete は指定IDのシグナルを削除する。
	Delete(ctx context.Context, id string) error

	// Stats24h は直近24時間のシグナル件数を緊急度ティア別に集計する。
	// 閾値はscoringパッケージの設定値をそのまま渡す。
	Stats24h(ctx context.Context, urgentMin, mediumMin int) (*model.SignalStats, error)

	// PlatformStats はプラットフォーム別の成果集計を返す。
	PlatformStats(ctx context.Context) ([]model.PlatformStats, error)

	// SumRevenueSince は指定日時以降に受注したシグナルの売上合計を返す。
	SumRevenueSince(ctx context.Context, since time.Time) (float64, error)

	// DeleteOlderThan は指定日時より古い未保存・未対応のシグナルを削除し、
	// 削除件数を返す。保存済みまたはトリアージ済みのシグナルは対象外。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// IgnoredAuthorRepository は無視作成者リストの永続化インターフェース。
type IgnoredAuthorRepository interface {
	// IsIgnored は指定の (platform, username) が無視リストに登録済みかを返す。
	IsIgnored(ctx context.Context, platform model.Platform, username string) (bool, error)

	// Add は無視作成者を登録し、同一トランザクションで既存の一致シグナルを
	// 削除する。削除されたシグナル件数を返す。登録済みの場合は冪等に成功する。
	Add(ctx context.Context, author *model.IgnoredAuthor) (purged int64, err error)

	// FindByID は指定IDの無視作成者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.IgnoredAuthor, error)

	// List は無視作成者の一覧を登録日時降順で返す。
	List(ctx context.Context) ([]*model.IgnoredAuthor, error)

	// Remove は指定IDの無視作成者を登録解除する。
	// 過去に削除されたシグナルは復元されない。
	Remove(ctx context.Context, id string) error
}

// KeywordRuleRepository は動的キーワードルールの永続化インターフェース。
type KeywordRuleRepository interface {
	// List は全キーワードルールをpriority降順で返す。
	List(ctx context.Context) ([]model.KeywordRule, error)

	// ListActive はアクティブなキーワードルールをpriority降順で返す。
	// 取り込みサイクルの開始時に読み込まれる。
	ListActive(ctx context.Context) ([]model.KeywordRule, error)

	// SaveBatch は削除とUPSERTをまとめて適用する。各サブ操作は冪等であり、
	// 個々の失敗は他のサブ操作の適用を妨げない。最初に発生したエラーを返す。
	SaveBatch(ctx context.Context, batch model.KeywordRuleBatch) error
}

// PreferenceRepository はオペレーター設定の永続化インターフェース。
type PreferenceRepository interface {
	// Get は指定名の設定値を取得する。見つからない場合はnilを返す。
	Get(ctx context.Context, name string) (*model.Preference, error)

	// Set は設定値を冪等にUPSERTする。
	Set(ctx context.Context, name, value string) (*model.Preference, error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
