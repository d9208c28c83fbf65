package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/beacon/internal/model"
)

// PostgresPreferenceRepo はPostgreSQLを使用したオペレーター設定リポジトリ。
type PostgresPreferenceRepo struct {
	db *sql.DB
}

// NewPostgresPreferenceRepo はPostgresPreferenceRepoを生成する。
func NewPostgresPreferenceRepo(db *sql.DB) *PostgresPreferenceRepo {
	return &PostgresPreferenceRepo{db: db}
}

// Get は指定名の設定値を取得する。見つからない場合はnilを返す。
func (r *PostgresPreferenceRepo) Get(ctx context.Context, name string) (*model.Preference, error) {
	pref := &model.Preference{}
	err := r.db.QueryRowContext(ctx,
		`SELECT name, value, updated_at FROM preferences WHERE name = $1`,
		name,
	).Scan(&pref.Name, &pref.Value, &pref.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("設定値の取得に失敗しました: %w", err)
	}

	return pref, nil
}

// Set は設定値を冪等にUPSERTする。
func (r *PostgresPreferenceRepo) Set(ctx context.Context, name, value string) (*model.Preference, error) {
	pref := &model.Preference{}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO preferences (name, value)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		 RETURNING name, value, updated_at`,
		name, value,
	).Scan(&pref.Name, &pref.Value, &pref.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("設定値の保存に失敗しました: %w", err)
	}

	return pref, nil
}

// compile-time interface check
var _ PreferenceRepository = (*PostgresPreferenceRepo)(nil)
