// Package model はドメインモデルを定義する。
package model

import "time"

// Platform は投稿の取得元プラットフォームを表す。
// 新しいプラットフォームはsourceパッケージのレジストリに登録することで追加する。
type Platform = string

const (
	PlatformReddit        Platform = "reddit"
	PlatformUpwork        Platform = "upwork"
	PlatformGitHub        Platform = "github"
	PlatformStackOverflow Platform = "stackoverflow"
	PlatformHackerNews    Platform = "hackernews"
	PlatformProductHunt   Platform = "producthunt"
	PlatformTwitter       Platform = "twitter"
	PlatformMock          Platform = "mock"
)

// SignalStatus はシグナルのトリアージ状態を表す。
// detected → contacted → won | lost の順に遷移する。
type SignalStatus string

const (
	// StatusDetected は検出直後の未対応状態。
	StatusDetected SignalStatus = "detected"
	// StatusContacted はオペレーターが投稿者に連絡済みの状態。
	StatusContacted SignalStatus = "contacted"
	// StatusWon は案件として受注した状態。
	StatusWon SignalStatus = "won"
	// StatusLost は受注に至らなかった状態。
	StatusLost SignalStatus = "lost"
)

// ValidSignalStatus はトリアージ状態が定義済みの値かを検証する。
func ValidSignalStatus(s SignalStatus) bool {
	switch s {
	case StatusDetected, StatusContacted, StatusWon, StatusLost:
		return true
	}
	return false
}

// RawPost はSourceAdapterが取得した未保存の投稿を表す。
// アダプターがプラットフォーム固有のレスポンスをこの形に変換した後、
// 取り込みワーカーに渡される。永続化はされない。
type RawPost struct {
	Platform   Platform
	PlatformID string // プラットフォーム名前空間内でのみ一意
	Title      string
	Content    string // 空の場合がある
	Author     string // 不明な場合は "deleted" や "Anonymous" 等のセンチネル
	URL        string // モックソースでは空の場合がある
	CreatedAt  time.Time // 投稿元での作成日時（取り込み日時とは別）
}

// Signal は検出された危機/案件シグナルを表す永続エンティティ。
// (platform, platform_id) の組で一意であり、同じ投稿の再取り込みは
// 既存行を変更しない。
//
// 派生フィールド（UrgencyScoreからEstimatedValueまで）は取り込み時に
// 1回だけ計算され、以後不変。トリアージフィールドはダッシュボード側
// からのみ更新される。
type Signal struct {
	ID         string
	Platform   Platform
	PlatformID string
	Title      string
	Content    string // サニタイズ済み
	Author     string
	URL        string
	CreatedAt  time.Time

	// 派生フィールド（取り込み時に計算、以後不変）
	UrgencyScore    int
	TechStack       []string // 語彙の宣言順、重複なし
	KeywordsMatched []string // 語彙の宣言順、重複なし
	BudgetRange     string   // 抽出できなかった場合は空
	EstimatedValue  float64

	// トリアージフィールド（ダッシュボードからのみ更新）
	Status        SignalStatus
	Responded     bool
	Saved         bool
	TemplateUsed  string
	Notes         string
	ActualRevenue float64
	ContactedAt   *time.Time
	WonAt         *time.Time

	DetectedAt time.Time // 取り込み日時（ストアが付与）
	UpdatedAt  time.Time
}

// SignalFilter はシグナル一覧取得のフィルタ条件を表す。
type SignalFilter struct {
	MinScore  int
	Platform  Platform // 空の場合は全プラットフォーム
	SavedOnly bool
	Since     *time.Time
	Until     *time.Time
	Limit     int // 0の場合はデフォルト値（50）を使用
}

// TriageUpdate はトリアージフィールドの部分更新を表す。
// nilのフィールドは変更しない。
type TriageUpdate struct {
	Status        *SignalStatus
	Responded     *bool
	Saved         *bool
	TemplateUsed  *string
	Notes         *string
	ActualRevenue *float64
}

// SignalStats は直近24時間のシグナル件数を緊急度ティア別に集計した結果。
// ティアの閾値はscoringパッケージの設定と共有され、表示側と統計側で
// 同じ値が使われる。
type SignalStats struct {
	Urgent int // スコアがUrgentMin以上
	Medium int // スコアがMediumMin以上UrgentMin未満
	Low    int // スコアがMediumMin未満
	Total  int
}

// PlatformStats はプラットフォーム別の成果集計。
type PlatformStats struct {
	Platform         Platform
	SignalCount      int
	ContactedCount   int
	WonCount         int
	TotalRevenue     float64
	RevenuePerSignal float64
}

// IgnoredAuthor は取り込みを拒否する (platform, username) の組。
// 登録時に既存の一致シグナルも同一トランザクションで削除される。
type IgnoredAuthor struct {
	ID        string
	Platform  Platform
	Username  string
	CreatedAt time.Time
}
