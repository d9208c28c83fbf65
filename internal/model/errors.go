// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, signal, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSignalNotFound     = "SIGNAL_NOT_FOUND"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidFilter      = "INVALID_FILTER"
	ErrCodeIgnoreNotFound     = "IGNORE_NOT_FOUND"
	ErrCodeInvalidIgnore      = "INVALID_IGNORE"
	ErrCodeInvalidKeywordRule = "INVALID_KEYWORD_RULE"
	ErrCodePreferenceNotFound = "PREFERENCE_NOT_FOUND"
)

// NewSignalNotFoundError はシグナル未検出エラーを生成する。
func NewSignalNotFoundError(signalID string) *APIError {
	return &APIError{
		Code:     ErrCodeSignalNotFound,
		Message:  fmt.Sprintf("指定されたシグナルが見つかりません: %s", signalID),
		Category: "signal",
		Action:   "シグナルIDを確認してください。",
	}
}

// NewInvalidStatusError は無効なトリアージ状態エラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStatus,
		Message:  fmt.Sprintf("無効なトリアージ状態です: %s", status),
		Category: "validation",
		Action:   "状態には detected、contacted、won、lost のいずれかを指定してください。",
	}
}

// NewInvalidRequestError はリクエスト解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidFilterError は無効なフィルタエラーを生成する。
func NewInvalidFilterError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効なフィルタです: %s", reason),
		Category: "validation",
		Action:   "フィルタパラメータの形式を確認してください。",
	}
}

// NewIgnoreNotFoundError は無視リストエントリ未検出エラーを生成する。
func NewIgnoreNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeIgnoreNotFound,
		Message:  fmt.Sprintf("指定された無視リストエントリが見つかりません: %s", id),
		Category: "signal",
		Action:   "エントリIDを確認してください。",
	}
}

// NewInvalidIgnoreError は無効な無視リスト登録エラーを生成する。
func NewInvalidIgnoreError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidIgnore,
		Message:  fmt.Sprintf("無効な無視リスト登録です: %s", reason),
		Category: "validation",
		Action:   "プラットフォームとユーザー名の両方を指定してください。",
	}
}

// NewInvalidKeywordRuleError は無効なキーワードルールエラーを生成する。
func NewInvalidKeywordRuleError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidKeywordRule,
		Message:  fmt.Sprintf("無効なキーワードルールです: %s", reason),
		Category: "validation",
		Action:   "キーワードと重みを確認してください。",
	}
}

// NewPreferenceNotFoundError は設定値未検出エラーを生成する。
func NewPreferenceNotFoundError(name string) *APIError {
	return &APIError{
		Code:     ErrCodePreferenceNotFound,
		Message:  fmt.Sprintf("指定された設定が見つかりません: %s", name),
		Category: "signal",
		Action:   "設定名を確認してください。",
	}
}
