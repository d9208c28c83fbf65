package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/beacon/internal/middleware"
	"github.com/hitoshi/beacon/internal/scoring"
)

// Pinger はヘルスチェックで使用するDB疎通確認インターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ヘルスチェック
	DB Pinger

	// ストア
	Signals     SignalStoreInterface
	Ignores     IgnoreStoreInterface
	Stats       StatsProviderInterface
	Rules       RuleStoreInterface
	Preferences PreferenceStoreInterface

	// 統計ティアの閾値（scoringと共有）
	ScoringConfig scoring.Config
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit
//
// ヘルスチェック（/health）はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	signalHandler := NewSignalHandler(deps.Signals, deps.Ignores)
	ignoreHandler := NewIgnoreHandler(deps.Ignores)
	statsHandler := NewStatsHandler(deps.Stats, deps.Preferences, deps.ScoringConfig)
	ruleHandler := NewKeywordRuleHandler(deps.Rules)
	prefHandler := NewPreferenceHandler(deps.Preferences)

	// ヘルスチェック（レート制限の対象外）
	r.Get("/health", NewHealthHandler(deps.DB))

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware())

		// シグナル閲覧・トリアージ
		r.Route("/api/signals", func(r chi.Router) {
			r.Get("/", signalHandler.ListSignals)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", signalHandler.GetSignal)
				r.Patch("/triage", signalHandler.UpdateTriage)
				r.Delete("/", signalHandler.DeleteSignal)
				r.Post("/ignore-author", signalHandler.IgnoreAuthor)
			})
		})

		// 無視作成者リスト
		r.Route("/api/ignores", func(r chi.Router) {
			r.Get("/", ignoreHandler.ListIgnores)
			r.Post("/", ignoreHandler.AddIgnore)
			r.Delete("/{id}", ignoreHandler.RemoveIgnore)
		})

		// 統計・目標
		r.Get("/api/stats", statsHandler.GetStats)
		r.Get("/api/stats/platforms", statsHandler.GetPlatformStats)
		r.Get("/api/goal", statsHandler.GetGoal)
		r.Put("/api/goal", statsHandler.UpdateGoal)

		// キーワードルール
		r.Route("/api/keyword-rules", func(r chi.Router) {
			r.Get("/", ruleHandler.ListRules)
			r.Post("/", ruleHandler.SaveBatch)
		})

		// オペレーター設定
		r.Route("/api/preferences/{name}", func(r chi.Router) {
			r.Get("/", prefHandler.GetPreference)
			r.Put("/", prefHandler.SetPreference)
		})
	})

	return r
}

// NewHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := db.PingContext(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "unhealthy",
				"reason": "database unreachable",
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
