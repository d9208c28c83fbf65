package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/beacon/internal/model"
	"github.com/hitoshi/beacon/internal/scoring"
)

// dailyGoalPreferenceName は日次売上目標を保存する設定名。
const dailyGoalPreferenceName = "daily_goal"

// StatsProviderInterface は統計ハンドラーが必要とするストアインターフェース。
type StatsProviderInterface interface {
	// Stats24h は直近24時間のシグナル件数を緊急度ティア別に集計する。
	Stats24h(ctx context.Context, urgentMin, mediumMin int) (*model.SignalStats, error)
	// PlatformStats はプラットフォーム別の成果集計を返す。
	PlatformStats(ctx context.Context) ([]model.PlatformStats, error)
	// SumRevenueSince は指定日時以降に受注したシグナルの売上合計を返す。
	SumRevenueSince(ctx context.Context, since time.Time) (float64, error)
}

// GoalStoreInterface は日次目標の保存先インターフェース。
type GoalStoreInterface interface {
	Get(ctx context.Context, name string) (*model.Preference, error)
	Set(ctx context.Context, name, value string) (*model.Preference, error)
}

// StatsHandler は統計・目標管理のHTTPハンドラー。
// ティアの閾値はscoringパッケージの設定と共有され、集計と表示で同じ値が使われる。
type StatsHandler struct {
	stats      StatsProviderInterface
	goals      GoalStoreInterface
	scoringCfg scoring.Config
	now        func() time.Time
}

// NewStatsHandler はStatsHandlerを生成する。
func NewStatsHandler(stats StatsProviderInterface, goals GoalStoreInterface, scoringCfg scoring.Config) *StatsHandler {
	return &StatsHandler{
		stats:      stats,
		goals:      goals,
		scoringCfg: scoringCfg,
		now:        time.Now,
	}
}

// statsResponse は24時間統計のAPIレスポンス。
type statsResponse struct {
	Urgent int `json:"urgent"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// platformStatsResponse はプラットフォーム別成果のAPIレスポンス。
type platformStatsResponse struct {
	Platform         string  `json:"platform"`
	SignalCount      int     `json:"signal_count"`
	ContactedCount   int     `json:"contacted_count"`
	WonCount         int     `json:"won_count"`
	TotalRevenue     float64 `json:"total_revenue"`
	RevenuePerSignal float64 `json:"revenue_per_signal"`
}

// platformStatsListResponse はプラットフォーム別成果一覧のAPIレスポンス。
type platformStatsListResponse struct {
	Platforms []platformStatsResponse `json:"platforms"`
}

// goalResponse は日次目標のAPIレスポンス。
type goalResponse struct {
	Goal      float64 `json:"goal"`
	Achieved  float64 `json:"achieved"`
	Remaining float64 `json:"remaining"`
}

// updateGoalRequest は日次目標更新リクエストのボディ。
type updateGoalRequest struct {
	Goal float64 `json:"goal"`
}

// GetStats は直近24時間のシグナル件数をティア別に返す。
// GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats24h(r.Context(), h.scoringCfg.UrgentMin, h.scoringCfg.MediumMin)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statsResponse{
		Urgent: stats.Urgent,
		Medium: stats.Medium,
		Low:    stats.Low,
		Total:  stats.Total,
	})
}

// GetPlatformStats はプラットフォーム別の成果集計を返す。
// GET /api/stats/platforms
func (h *StatsHandler) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.PlatformStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := platformStatsListResponse{
		Platforms: make([]platformStatsResponse, 0, len(stats)),
	}
	for _, s := range stats {
		resp.Platforms = append(resp.Platforms, platformStatsResponse{
			Platform:         s.Platform,
			SignalCount:      s.SignalCount,
			ContactedCount:   s.ContactedCount,
			WonCount:         s.WonCount,
			TotalRevenue:     s.TotalRevenue,
			RevenuePerSignal: s.RevenuePerSignal,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetGoal は日次売上目標と当日の達成額を返す。
// 目標が未設定の場合は0として扱う。
// GET /api/goal
func (h *StatsHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal := 0.0
	pref, err := h.goals.Get(r.Context(), dailyGoalPreferenceName)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if pref != nil {
		if v, err := strconv.ParseFloat(pref.Value, 64); err == nil {
			goal = v
		}
	}

	// 当日0時（UTC）以降に受注したシグナルの売上合計
	now := h.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	achieved, err := h.stats.SumRevenueSince(r.Context(), startOfDay)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	remaining := goal - achieved
	if remaining < 0 {
		remaining = 0
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goalResponse{
		Goal:      goal,
		Achieved:  achieved,
		Remaining: remaining,
	})
}

// UpdateGoal は日次売上目標を更新する。
// PUT /api/goal
func (h *StatsHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req updateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Goal < 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidFilterError("goalは0以上で指定してください"))
		return
	}

	if _, err := h.goals.Set(r.Context(), dailyGoalPreferenceName,
		strconv.FormatFloat(req.Goal, 'f', -1, 64)); err != nil {
		handleServiceError(w, err)
		return
	}

	h.GetGoal(w, r)
}
