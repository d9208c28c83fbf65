// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は外部プラットフォームから取得した投稿本文を
// サニタイズし、ダッシュボードでのXSS攻撃からオペレーターを保護する。
// bluemondayライブラリの許可リストベースのポリシーを使用する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService は投稿本文のサニタイズ機能のインターフェースを定義する。
// シグナルの保存前に使用される。
type ContentSanitizerService interface {
	// Sanitize は投稿本文からすべてのHTMLマークアップを除去してテキストを返す。
	// script, iframe, styleタグおよびon*イベント属性を含む全タグが除去される。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
//
// 投稿本文はプラットフォームによってHTML断片（RSSのdescription等）と
// プレーンテキストが混在するため、許可タグなしのStrictPolicyで全タグを
// 除去し、テキストのみを保存する。スコアリングはサニタイズ前の本文に
// 対して行われるため、ポリシーがスコアに影響することはない。
func NewContentSanitizer() *contentSanitizer {
	return &contentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize は投稿本文からすべてのHTMLマークアップを除去してテキストを返す。
func (s *contentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
