package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/beacon/internal/model"
)

// PostgresKeywordRuleRepo はPostgreSQLを使用したキーワードルールリポジトリ。
type PostgresKeywordRuleRepo struct {
	db *sql.DB
}

// NewPostgresKeywordRuleRepo はPostgresKeywordRuleRepoを生成する。
func NewPostgresKeywordRuleRepo(db *sql.DB) *PostgresKeywordRuleRepo {
	return &PostgresKeywordRuleRepo{db: db}
}

// List は全キーワードルールをpriority降順で返す。
func (r *PostgresKeywordRuleRepo) List(ctx context.Context) ([]model.KeywordRule, error) {
	return r.list(ctx, false)
}

// ListActive はアクティブなキーワードルールをpriority降順で返す。
func (r *PostgresKeywordRuleRepo) ListActive(ctx context.Context) ([]model.KeywordRule, error) {
	return r.list(ctx, true)
}

func (r *PostgresKeywordRuleRepo) list(ctx context.Context, activeOnly bool) ([]model.KeywordRule, error) {
	query := `SELECT id, platform, keyword, category, weight, active, priority, created_at, updated_at
	          FROM keyword_rules`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY priority DESC, keyword ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("キーワードルール一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var rules []model.KeywordRule
	for rows.Next() {
		var rule model.KeywordRule
		if err := rows.Scan(
			&rule.ID, &rule.Platform, &rule.Keyword, &rule.Category,
			&rule.Weight, &rule.Active, &rule.Priority, &rule.CreatedAt, &rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("キーワードルール行の読み取りに失敗しました: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("キーワードルール一覧の走査に失敗しました: %w", err)
	}

	return rules, nil
}

// SaveBatch は削除とUPSERTをまとめて適用する。
// 各サブ操作は個別に冪等であり、1件の失敗が他のサブ操作を妨げない。
// 最初に発生したエラーを返す。
func (r *PostgresKeywordRuleRepo) SaveBatch(ctx context.Context, batch model.KeywordRuleBatch) error {
	var firstErr error

	for _, id := range batch.DeleteIDs {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM keyword_rules WHERE id = $1`, id); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("キーワードルールの削除に失敗しました: %w", err)
			}
		}
	}

	for _, rule := range batch.Upserts {
		id := rule.ID
		if id == "" {
			id = uuid.NewString()
		}

		_, err := r.db.ExecContext(ctx,
			`INSERT INTO keyword_rules (id, platform, keyword, category, weight, active, priority)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (platform, keyword) DO UPDATE SET
			     category = EXCLUDED.category,
			     weight = EXCLUDED.weight,
			     active = EXCLUDED.active,
			     priority = EXCLUDED.priority,
			     updated_at = now()`,
			id, rule.Platform, rule.Keyword, rule.Category, rule.Weight, rule.Active, rule.Priority,
		)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("キーワードルールの保存に失敗しました: %w", err)
			}
		}
	}

	return firstErr
}

// compile-time interface check
var _ KeywordRuleRepository = (*PostgresKeywordRuleRepo)(nil)
