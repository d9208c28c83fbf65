package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/beacon/internal/model"
)

// defaultListLimit はLimit未指定時の一覧取得件数。
const defaultListLimit = 50

// PostgresSignalRepo はPostgreSQLを使用したシグナルリポジトリ。
type PostgresSignalRepo struct {
	db *sql.DB
}

// NewPostgresSignalRepo はPostgresSignalRepoを生成する。
func NewPostgresSignalRepo(db *sql.DB) *PostgresSignalRepo {
	return &PostgresSignalRepo{db: db}
}

// signalColumns はシグナル行のSELECT対象カラム。scanSignalRowと対で使う。
const signalColumns = `id, platform, platform_id, title, content, author, url, created_at,
       urgency_score, tech_stack, keywords_matched, budget_range, estimated_value,
       status, responded, saved, template_used, notes, actual_revenue,
       contacted_at, won_at, detected_at, updated_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通スキャンインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSignalRow はsignalColumnsの順にシグナル行を読み取る。
func scanSignalRow(row rowScanner) (*model.Signal, error) {
	signal := &model.Signal{}
	var techStack, keywords []byte
	var contactedAt, wonAt sql.NullTime

	err := row.Scan(
		&signal.ID, &signal.Platform, &signal.PlatformID, &signal.Title,
		&signal.Content, &signal.Author, &signal.URL, &signal.CreatedAt,
		&signal.UrgencyScore, &techStack, &keywords, &signal.BudgetRange,
		&signal.EstimatedValue, &signal.Status, &signal.Responded, &signal.Saved,
		&signal.TemplateUsed, &signal.Notes, &signal.ActualRevenue,
		&contactedAt, &wonAt, &signal.DetectedAt, &signal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(techStack, &signal.TechStack); err != nil {
		return nil, fmt.Errorf("tech_stackの読み取りに失敗しました: %w", err)
	}
	if err := json.Unmarshal(keywords, &signal.KeywordsMatched); err != nil {
		return nil, fmt.Errorf("keywords_matchedの読み取りに失敗しました: %w", err)
	}
	if contactedAt.Valid {
		signal.ContactedAt = &contactedAt.Time
	}
	if wonAt.Valid {
		signal.WonAt = &wonAt.Time
	}

	return signal, nil
}

// jsonArray は文字列スライスをJSONB格納用にエンコードする。nilは空配列になる。
func jsonArray(ss []string) ([]byte, error) {
	if ss == nil {
		ss = []string{}
	}
	return json.Marshal(ss)
}

// Upsert はシグナルを保存する。(platform, platform_id) が既存の場合は
// 何も変更せずcreated=falseを返す。
func (r *PostgresSignalRepo) Upsert(ctx context.Context, signal *model.Signal) (bool, error) {
	techStack, err := jsonArray(signal.TechStack)
	if err != nil {
		return false, fmt.Errorf("tech_stackのエンコードに失敗しました: %w", err)
	}
	keywords, err := jsonArray(signal.KeywordsMatched)
	if err != nil {
		return false, fmt.Errorf("keywords_matchedのエンコードに失敗しました: %w", err)
	}

	id := signal.ID
	if id == "" {
		id = uuid.NewString()
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO signals (id, platform, platform_id, title, content, author, url,
		                      created_at, urgency_score, tech_stack, keywords_matched,
		                      budget_range, estimated_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (platform, platform_id) DO NOTHING
		 RETURNING id, status, detected_at, updated_at`,
		id, signal.Platform, signal.PlatformID, signal.Title, signal.Content,
		signal.Author, signal.URL, signal.CreatedAt, signal.UrgencyScore,
		techStack, keywords, signal.BudgetRange, signal.EstimatedValue,
	).Scan(&signal.ID, &signal.Status, &signal.DetectedAt, &signal.UpdatedAt)

	if err == sql.ErrNoRows {
		// 既存行あり。DO NOTHINGのためRETURNINGが空になる。
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("シグナルの保存に失敗しました: %w", err)
	}

	return true, nil
}

// FindByID は指定IDのシグナルを取得する。見つからない場合はnilを返す。
func (r *PostgresSignalRepo) FindByID(ctx context.Context, id string) (*model.Signal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE id = $1`, id)

	signal, err := scanSignalRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("シグナルの取得に失敗しました: %w", err)
	}

	return signal, nil
}

// List はフィルタ条件に一致するシグナル一覧を返す。
// urgency_score降順、同点はdetected_at降順で並ぶ。
func (r *PostgresSignalRepo) List(ctx context.Context, filter model.SignalFilter) ([]*model.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE urgency_score >= $1`
	args := []interface{}{filter.MinScore}
	argIndex := 2

	if filter.Platform != "" {
		query += fmt.Sprintf(" AND platform = $%d", argIndex)
		args = append(args, filter.Platform)
		argIndex++
	}
	if filter.SavedOnly {
		query += " AND saved = true"
	}
	if filter.Since != nil {
		query += fmt.Sprintf(" AND detected_at >= $%d", argIndex)
		args = append(args, *filter.Since)
		argIndex++
	}
	if filter.Until != nil {
		query += fmt.Sprintf(" AND detected_at < $%d", argIndex)
		args = append(args, *filter.Until)
		argIndex++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(" ORDER BY urgency_score DESC, detected_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("シグナル一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var signals []*model.Signal
	for rows.Next() {
		signal, err := scanSignalRow(rows)
		if err != nil {
			return nil, fmt.Errorf("シグナル行の読み取りに失敗しました: %w", err)
		}
		signals = append(signals, signal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("シグナル一覧の走査に失敗しました: %w", err)
	}

	return signals, nil
}

// UpdateTriage はトリアージフィールドを部分更新する。nilのフィールドは変更しない。
// 見つからない場合はnilを返す。
func (r *PostgresSignalRepo) UpdateTriage(ctx context.Context, id string, update model.TriageUpdate) (*model.Signal, error) {
	sets := []string{"updated_at = now()"}
	args := []interface{}{id}
	argIndex := 2

	appendSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.Status != nil {
		appendSet("status", *update.Status)
		// 状態遷移のタイムスタンプは初回のみ記録する
		switch *update.Status {
		case model.StatusContacted:
			sets = append(sets, "contacted_at = COALESCE(contacted_at, now())")
		case model.StatusWon:
			sets = append(sets, "won_at = COALESCE(won_at, now())")
		}
	}
	if update.Responded != nil {
		appendSet("responded", *update.Responded)
	}
	if update.Saved != nil {
		appendSet("saved", *update.Saved)
	}
	if update.TemplateUsed != nil {
		appendSet("template_used", *update.TemplateUsed)
	}
	if update.Notes != nil {
		appendSet("notes", *update.Notes)
	}
	if update.ActualRevenue != nil {
		appendSet("actual_revenue", *update.ActualRevenue)
	}

	query := "UPDATE signals SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE id = $1 RETURNING " + signalColumns

	row := r.db.QueryRowContext(ctx, query, args...)
	signal, err := scanSignalRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("トリアージ更新に失敗しました: %w", err)
	}

	return signal, nil
}

// Delete は指定IDのシグナルを削除する。
func (r *PostgresSignalRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM signals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("シグナルの削除に失敗しました: %w", err)
	}
	return nil
}

// Stats24h は直近24時間のシグナル件数を緊急度ティア別に集計する。
func (r *PostgresSignalRepo) Stats24h(ctx context.Context, urgentMin, mediumMin int) (*model.SignalStats, error) {
	stats := &model.SignalStats{}

	err := r.db.QueryRowContext(ctx,
		`SELECT
		    count(*) FILTER (WHERE urgency_score >= $1),
		    count(*) FILTER (WHERE urgency_score >= $2 AND urgency_score < $1),
		    count(*) FILTER (WHERE urgency_score < $2),
		    count(*)
		 FROM signals
		 WHERE detected_at >= now() - interval '24 hours'`,
		urgentMin, mediumMin,
	).Scan(&stats.Urgent, &stats.Medium, &stats.Low, &stats.Total)
	if err != nil {
		return nil, fmt.Errorf("シグナル統計の集計に失敗しました: %w", err)
	}

	return stats, nil
}

// PlatformStats はプラットフォーム別の成果集計を返す。
func (r *PostgresSignalRepo) PlatformStats(ctx context.Context) ([]model.PlatformStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT platform,
		        count(*),
		        count(*) FILTER (WHERE contacted_at IS NOT NULL),
		        count(*) FILTER (WHERE status = 'won'),
		        COALESCE(sum(actual_revenue), 0)
		 FROM signals
		 GROUP BY platform
		 ORDER BY platform`,
	)
	if err != nil {
		return nil, fmt.Errorf("プラットフォーム統計の集計に失敗しました: %w", err)
	}
	defer rows.Close()

	var stats []model.PlatformStats
	for rows.Next() {
		var ps model.PlatformStats
		if err := rows.Scan(&ps.Platform, &ps.SignalCount, &ps.ContactedCount, &ps.WonCount, &ps.TotalRevenue); err != nil {
			return nil, fmt.Errorf("プラットフォーム統計行の読み取りに失敗しました: %w", err)
		}
		if ps.SignalCount > 0 {
			ps.RevenuePerSignal = ps.TotalRevenue / float64(ps.SignalCount)
		}
		stats = append(stats, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("プラットフォーム統計の走査に失敗しました: %w", err)
	}

	return stats, nil
}

// SumRevenueSince は指定日時以降に受注したシグナルの売上合計を返す。
func (r *PostgresSignalRepo) SumRevenueSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(sum(actual_revenue), 0) FROM signals WHERE won_at >= $1`,
		since,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("売上合計の取得に失敗しました: %w", err)
	}
	return total, nil
}

// DeleteOlderThan は指定日時より古い未保存・未対応のシグナルを削除する。
// 保存済みまたはトリアージ済みのシグナルは保持する。
func (r *PostgresSignalRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM signals
		 WHERE detected_at < $1 AND saved = false AND status = 'detected'`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("古いシグナルの削除に失敗しました: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ SignalRepository = (*PostgresSignalRepo)(nil)
