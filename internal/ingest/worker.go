package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/beacon/internal/config"
	"github.com/hitoshi/beacon/internal/source"
)

// MetricsRecorder はスキャン結果のメトリクス記録インターフェース。
// metricsパッケージのCollectorが実装する。
type MetricsRecorder interface {
	// RecordScan はスキャンサイクルの成否と所要時間を記録する。
	RecordScan(platform string, success bool, duration time.Duration)
	// RecordOutcome は投稿1件の処理結果を記録する。
	RecordOutcome(platform string, outcome string)
}

// Worker は単一ソースの定期スキャンを実行する。
// ソースごとに1つのWorkerが独立したゴルーチンで動作し、
// あるソースの失敗が他のソースに波及することはない。
type Worker struct {
	adapter   source.Adapter
	pipeline  *Pipeline
	sourceCfg config.SourceConfig
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// NewWorker はWorkerを生成する。
func NewWorker(
	adapter source.Adapter,
	pipeline *Pipeline,
	sourceCfg config.SourceConfig,
	metrics MetricsRecorder,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		adapter:   adapter,
		pipeline:  pipeline,
		sourceCfg: sourceCfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// Start はソースのスキャン間隔のティッカーでワーカーを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
// サイクルは直列に実行され、同一ソースのスキャンが並行することはない。
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.sourceCfg.ScanInterval)
	defer ticker.Stop()

	w.logger.Info("スキャンワーカーを開始しました",
		slog.String("platform", w.adapter.Name()),
		slog.Duration("interval", w.sourceCfg.ScanInterval),
		slog.Int("min_score", w.sourceCfg.MinScore),
	)

	// 起動直後に1回実行
	if err := w.RunOnce(ctx); err != nil {
		w.logger.Error("スキャンサイクルの実行に失敗しました",
			slog.String("platform", w.adapter.Name()),
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("スキャンワーカーを停止しました",
				slog.String("platform", w.adapter.Name()),
			)
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("スキャンサイクルの実行に失敗しました",
					slog.String("platform", w.adapter.Name()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce はスキャンサイクルを1回実行する。
// 投稿1件の処理失敗はログとメトリクスに記録して続行し、
// 取得自体の失敗のみエラーとして返す。
func (w *Worker) RunOnce(ctx context.Context) error {
	start := time.Now()
	platform := w.adapter.Name()

	posts, err := w.adapter.Fetch(ctx)
	if err != nil {
		w.metrics.RecordScan(platform, false, time.Since(start))
		return err
	}

	// サイクル開始時点のルールでExtractorを固定する
	extractor := w.pipeline.ExtractorForCycle(ctx, platform)

	counts := map[Outcome]int{}
	for _, post := range posts {
		outcome, err := w.pipeline.ProcessPost(ctx, post, extractor, w.sourceCfg)
		if err != nil {
			w.logger.Error("投稿の処理に失敗しました",
				slog.String("platform", platform),
				slog.String("platform_id", post.PlatformID),
				slog.String("error", err.Error()),
			)
		}
		counts[outcome]++
		w.metrics.RecordOutcome(platform, string(outcome))
	}

	duration := time.Since(start)
	w.metrics.RecordScan(platform, true, duration)

	w.logger.Info("スキャンサイクルが完了しました",
		slog.String("platform", platform),
		slog.Int("fetched", len(posts)),
		slog.Int("stored", counts[OutcomeStored]),
		slog.Int("duplicate", counts[OutcomeDuplicate]),
		slog.Int("below_threshold", counts[OutcomeBelowThreshold]),
		slog.Int("ignored", counts[OutcomeIgnored]),
		slog.Int("stale", counts[OutcomeStale]),
		slog.Int("failed", counts[OutcomeFailed]),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
