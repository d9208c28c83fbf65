// Package cleanup はシグナルデータの自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超過した未保存・未対応のシグナルを
// 日次バッチで削除する。保存済みまたはトリアージ済みのシグナルは
// オペレーターの作業記録として保持される。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SignalPurger は古いシグナルの削除インターフェース。
type SignalPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は保持期間を超過したシグナルの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	signals       SignalPurger
	logger        *slog.Logger
	RetentionDays int // シグナルの保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は90日。
func NewCleanupJob(signals SignalPurger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		signals:       signals,
		logger:        logger,
		RetentionDays: 90,
	}
}

// Run は保持期間を超過したシグナルを削除する。
// detected_atがRetentionDays日前より古く、saved=falseかつstatus=detectedの
// シグナルをDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	cutoff := time.Now().AddDate(0, 0, -j.RetentionDays)
	deletedCount, err := j.signals.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("シグナルクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("シグナルクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("シグナルクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は指定間隔のティッカーでクリーンアップジョブを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("クリーンアップジョブを開始しました",
		slog.Duration("interval", interval),
		slog.Int("retention_days", j.RetentionDays),
	)

	// 起動直後に1回実行
	if err := j.Run(ctx); err != nil {
		j.logger.Error("クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("クリーンアップジョブを停止しました")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("クリーンアップジョブの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
