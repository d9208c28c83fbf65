package model

import "time"

// KeywordRuleCategory はキーワードルールの分類。
type KeywordRuleCategory string

const (
	// CategoryCrisis は障害・緊急系のキーワード。
	CategoryCrisis KeywordRuleCategory = "crisis"
	// CategoryOpportunity は報酬・発注系のキーワード。
	CategoryOpportunity KeywordRuleCategory = "opportunity"
)

// KeywordRule は静的スコアリングテーブルを上書き・拡張する動的ルール。
// (platform, keyword) の組で一意。Platformが空文字列の場合は全プラット
// フォームに適用される。アクティブなルールのみがスコアリングに反映される。
type KeywordRule struct {
	ID        string
	Platform  Platform // 空 = 全プラットフォーム
	Keyword   string
	Category  KeywordRuleCategory
	Weight    int
	Active    bool
	Priority  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KeywordRuleBatch はキーワードルールの一括保存操作を表す。
// 削除とUPSERTをまとめて適用する。各サブ操作は冪等であり、
// 一部のみ適用された状態も許容される。
type KeywordRuleBatch struct {
	DeleteIDs []string
	Upserts   []KeywordRule
}

// Preference はオペレーターの設定値（キーバリュー）。
// 一覧のデフォルト緊急度カットオフや日次売上目標などに使う。
type Preference struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}
