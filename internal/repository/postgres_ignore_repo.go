package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/beacon/internal/model"
)

// PostgresIgnoreRepo はPostgreSQLを使用した無視作成者リポジトリ。
type PostgresIgnoreRepo struct {
	db *sql.DB
}

// NewPostgresIgnoreRepo はPostgresIgnoreRepoを生成する。
func NewPostgresIgnoreRepo(db *sql.DB) *PostgresIgnoreRepo {
	return &PostgresIgnoreRepo{db: db}
}

// IsIgnored は指定の (platform, username) が無視リストに登録済みかを返す。
func (r *PostgresIgnoreRepo) IsIgnored(ctx context.Context, platform model.Platform, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ignored_authors WHERE platform = $1 AND username = $2)`,
		platform, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("無視リストの確認に失敗しました: %w", err)
	}
	return exists, nil
}

// Add は無視作成者を登録し、同一トランザクションで既存の一致シグナルを削除する。
// 登録とシグナル削除はどちらかだけが適用されることはない。
// 登録済みの場合は冪等に成功し、シグナル削除のみ再実行される。
func (r *PostgresIgnoreRepo) Add(ctx context.Context, author *model.IgnoredAuthor) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	id := author.ID
	if id == "" {
		id = uuid.NewString()
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO ignored_authors (id, platform, username)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (platform, username) DO UPDATE SET username = EXCLUDED.username
		 RETURNING id, created_at`,
		id, author.Platform, author.Username,
	).Scan(&author.ID, &author.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("無視作成者の登録に失敗しました: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM signals WHERE platform = $1 AND author = $2`,
		author.Platform, author.Username,
	)
	if err != nil {
		return 0, fmt.Errorf("無視作成者のシグナル削除に失敗しました: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return purged, nil
}

// FindByID は指定IDの無視作成者を取得する。見つからない場合はnilを返す。
func (r *PostgresIgnoreRepo) FindByID(ctx context.Context, id string) (*model.IgnoredAuthor, error) {
	author := &model.IgnoredAuthor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, platform, username, created_at FROM ignored_authors WHERE id = $1`,
		id,
	).Scan(&author.ID, &author.Platform, &author.Username, &author.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("無視作成者の取得に失敗しました: %w", err)
	}

	return author, nil
}

// List は無視作成者の一覧を登録日時降順で返す。
func (r *PostgresIgnoreRepo) List(ctx context.Context) ([]*model.IgnoredAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, platform, username, created_at
		 FROM ignored_authors
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("無視作成者一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var authors []*model.IgnoredAuthor
	for rows.Next() {
		author := &model.IgnoredAuthor{}
		if err := rows.Scan(&author.ID, &author.Platform, &author.Username, &author.CreatedAt); err != nil {
			return nil, fmt.Errorf("無視作成者行の読み取りに失敗しました: %w", err)
		}
		authors = append(authors, author)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("無視作成者一覧の走査に失敗しました: %w", err)
	}

	return authors, nil
}

// Remove は指定IDの無視作成者を登録解除する。過去に削除されたシグナルは復元されない。
func (r *PostgresIgnoreRepo) Remove(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ignored_authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("無視作成者の登録解除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ IgnoredAuthorRepository = (*PostgresIgnoreRepo)(nil)
