// Package ingest は取得した投稿のスコアリング・フィルタリング・保存を行う。
//
// パイプラインは投稿1件ごとに独立して処理され、1件の失敗が同一サイクル内の
// 他の投稿の処理を妨げることはない。保存は (platform, platform_id) キーの
// 冪等なUPSERTで行われ、同じ投稿を何度取り込んでも結果は変わらない。
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/beacon/internal/config"
	"github.com/hitoshi/beacon/internal/model"
	"github.com/hitoshi/beacon/internal/scoring"
)

// Outcome は投稿1件の処理結果の分類。メトリクスとログで使用する。
type Outcome string

const (
	// OutcomeStored は新規シグナルとして保存された。
	OutcomeStored Outcome = "stored"
	// OutcomeDuplicate は既存シグナルと重複していた（変更なし）。
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeBelowThreshold はスコアがソースの最小閾値未満だった。
	OutcomeBelowThreshold Outcome = "below_threshold"
	// OutcomeIgnored は作成者が無視リストに登録されていた。
	OutcomeIgnored Outcome = "ignored"
	// OutcomeStale は投稿がソースの最大許容年齢より古かった。
	OutcomeStale Outcome = "stale"
	// OutcomeFailed は処理中にエラーが発生した。
	OutcomeFailed Outcome = "failed"
)

// SignalStore はシグナルの冪等保存インターフェース。
type SignalStore interface {
	Upsert(ctx context.Context, signal *model.Signal) (bool, error)
}

// IgnoreChecker は無視リストの照会インターフェース。
type IgnoreChecker interface {
	IsIgnored(ctx context.Context, platform model.Platform, username string) (bool, error)
}

// RuleLister はアクティブなキーワードルールの読み込みインターフェース。
type RuleLister interface {
	ListActive(ctx context.Context) ([]model.KeywordRule, error)
}

// Sanitizer は投稿本文のサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(raw string) string
}

// Pipeline は投稿1件をシグナルに変換して保存する処理を提供する。
type Pipeline struct {
	signals   SignalStore
	ignores   IgnoreChecker
	rules     RuleLister
	sanitizer Sanitizer
	extractor *scoring.Extractor
	logger    *slog.Logger
	now       func() time.Time
}

// NewPipeline はPipelineを生成する。
func NewPipeline(
	signals SignalStore,
	ignores IgnoreChecker,
	rules RuleLister,
	sanitizer Sanitizer,
	extractor *scoring.Extractor,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		signals:   signals,
		ignores:   ignores,
		rules:     rules,
		sanitizer: sanitizer,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

// ExtractorForCycle はサイクル開始時点のアクティブルールを静的テーブルに
// マージしたExtractorを返す。サイクル途中のルール変更は次のサイクルから
// 反映される。ルールの読み込みに失敗した場合は静的テーブルのみで続行する。
func (p *Pipeline) ExtractorForCycle(ctx context.Context, platform model.Platform) *scoring.Extractor {
	rules, err := p.rules.ListActive(ctx)
	if err != nil {
		p.logger.Warn("キーワードルールの読み込みに失敗したため静的テーブルのみで続行します",
			slog.String("platform", platform),
			slog.String("error", err.Error()),
		)
		return p.extractor
	}
	return p.extractor.WithRules(platform, rules)
}

// ProcessPost は投稿1件を処理して結果の分類を返す。
// 処理順: 年齢チェック → 無視リスト照会 → スコアリング → 閾値判定 →
// サニタイズ → 冪等保存。
// スコアリングはサニタイズ前の本文に対して行われる。
func (p *Pipeline) ProcessPost(
	ctx context.Context,
	post model.RawPost,
	extractor *scoring.Extractor,
	sourceCfg config.SourceConfig,
) (Outcome, error) {
	// 古い投稿の破棄: 再起動時のバックフィルや低頻度スキャンでの重複走査を抑える
	if sourceCfg.MaxAge > 0 && !post.CreatedAt.IsZero() {
		if p.now().Sub(post.CreatedAt) > sourceCfg.MaxAge {
			return OutcomeStale, nil
		}
	}

	ignored, err := p.ignores.IsIgnored(ctx, post.Platform, post.Author)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("無視リストの照会に失敗しました: %w", err)
	}
	if ignored {
		return OutcomeIgnored, nil
	}

	extraction := extractor.Extract(post.Platform, post.Title, post.Content, sourceCfg.Boost)
	if extraction.UrgencyScore < sourceCfg.MinScore {
		return OutcomeBelowThreshold, nil
	}

	signal := &model.Signal{
		Platform:        post.Platform,
		PlatformID:      post.PlatformID,
		Title:           post.Title,
		Content:         p.sanitizer.Sanitize(post.Content),
		Author:          post.Author,
		URL:             post.URL,
		CreatedAt:       post.CreatedAt,
		UrgencyScore:    extraction.UrgencyScore,
		TechStack:       extraction.TechStack,
		KeywordsMatched: extraction.KeywordsMatched,
		BudgetRange:     extraction.BudgetRange,
		EstimatedValue:  extraction.EstimatedValue,
	}

	created, err := p.signals.Upsert(ctx, signal)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("シグナルの保存に失敗しました: %w", err)
	}
	if !created {
		return OutcomeDuplicate, nil
	}

	p.logger.Info("新規シグナルを検出しました",
		slog.String("signal_id", signal.ID),
		slog.String("platform", signal.Platform),
		slog.String("platform_id", signal.PlatformID),
		slog.Int("urgency_score", signal.UrgencyScore),
		slog.Float64("estimated_value", signal.EstimatedValue),
	)

	return OutcomeStored, nil
}
