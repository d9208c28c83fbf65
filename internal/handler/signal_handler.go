// Package handler はダッシュボードAPIのHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/beacon/internal/model"
)

// SignalStoreInterface はシグナルハンドラーが必要とするストアインターフェース。
type SignalStoreInterface interface {
	// FindByID は指定IDのシグナルを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Signal, error)
	// List はフィルタ条件に一致するシグナル一覧を返す。
	List(ctx context.Context, filter model.SignalFilter) ([]*model.Signal, error)
	// UpdateTriage はトリアージフィールドを部分更新する。見つからない場合はnilを返す。
	UpdateTriage(ctx context.Context, id string, update model.TriageUpdate) (*model.Signal, error)
	// Delete は指定IDのシグナルを削除する。
	Delete(ctx context.Context, id string) error
}

// IgnoreAdder はシグナルの作成者を無視リストに登録するためのインターフェース。
// POST /api/signals/{id}/ignore-author で使用する。
type IgnoreAdder interface {
	Add(ctx context.Context, author *model.IgnoredAuthor) (purged int64, err error)
}

// SignalHandler はシグナル閲覧・トリアージのHTTPハンドラー。
type SignalHandler struct {
	store   SignalStoreInterface
	ignores IgnoreAdder
}

// NewSignalHandler はSignalHandlerを生成する。
func NewSignalHandler(store SignalStoreInterface, ignores IgnoreAdder) *SignalHandler {
	return &SignalHandler{
		store:   store,
		ignores: ignores,
	}
}

// triageUpdateRequest はトリアージ更新リクエストのボディ。
// nilのフィールドは変更しない。
type triageUpdateRequest struct {
	Status        *string  `json:"status"`
	Responded     *bool    `json:"responded"`
	Saved         *bool    `json:"saved"`
	TemplateUsed  *string  `json:"template_used"`
	Notes         *string  `json:"notes"`
	ActualRevenue *float64 `json:"actual_revenue"`
}

// signalResponse はシグナルのAPIレスポンス。
type signalResponse struct {
	ID              string     `json:"id"`
	Platform        string     `json:"platform"`
	PlatformID      string     `json:"platform_id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Author          string     `json:"author"`
	URL             string     `json:"url"`
	CreatedAt       time.Time  `json:"created_at"`
	UrgencyScore    int        `json:"urgency_score"`
	TechStack       []string   `json:"tech_stack"`
	KeywordsMatched []string   `json:"keywords_matched"`
	BudgetRange     string     `json:"budget_range"`
	EstimatedValue  float64    `json:"estimated_value"`
	Status          string     `json:"status"`
	Responded       bool       `json:"responded"`
	Saved           bool       `json:"saved"`
	TemplateUsed    string     `json:"template_used"`
	Notes           string     `json:"notes"`
	ActualRevenue   float64    `json:"actual_revenue"`
	ContactedAt     *time.Time `json:"contacted_at"`
	WonAt           *time.Time `json:"won_at"`
	DetectedAt      time.Time  `json:"detected_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// signalListResponse はシグナル一覧のAPIレスポンス。
type signalListResponse struct {
	Signals []signalResponse `json:"signals"`
	Count   int              `json:"count"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// ListSignals はフィルタ条件付きのシグナル一覧を返す。
// GET /api/signals?min_score=&platform=&saved=&limit=
// 結果はurgency_score降順、同点はdetected_at降順。limit未指定時は50件に切り詰める。
func (h *SignalHandler) ListSignals(w http.ResponseWriter, r *http.Request) {
	filter, apiErr := parseSignalFilter(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	signals, err := h.store.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := signalListResponse{
		Signals: make([]signalResponse, 0, len(signals)),
		Count:   len(signals),
	}
	for _, s := range signals {
		resp.Signals = append(resp.Signals, toSignalResponse(s))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// GetSignal はシグナル詳細を取得する。
// GET /api/signals/:id
func (h *SignalHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	signalID := chi.URLParam(r, "id")

	signal, err := h.store.FindByID(r.Context(), signalID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if signal == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewSignalNotFoundError(signalID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toSignalResponse(signal))
}

// UpdateTriage はトリアージフィールドを部分更新する。
// PATCH /api/signals/:id/triage
func (h *SignalHandler) UpdateTriage(w http.ResponseWriter, r *http.Request) {
	signalID := chi.URLParam(r, "id")

	var req triageUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	update := model.TriageUpdate{
		Responded:     req.Responded,
		Saved:         req.Saved,
		TemplateUsed:  req.TemplateUsed,
		Notes:         req.Notes,
		ActualRevenue: req.ActualRevenue,
	}

	if req.Status != nil {
		status := model.SignalStatus(*req.Status)
		if !model.ValidSignalStatus(status) {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidStatusError(*req.Status))
			return
		}
		update.Status = &status
	}

	signal, err := h.store.UpdateTriage(r.Context(), signalID, update)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if signal == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewSignalNotFoundError(signalID))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toSignalResponse(signal))
}

// DeleteSignal はシグナルを削除する。
// DELETE /api/signals/:id
func (h *SignalHandler) DeleteSignal(w http.ResponseWriter, r *http.Request) {
	signalID := chi.URLParam(r, "id")

	signal, err := h.store.FindByID(r.Context(), signalID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if signal == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewSignalNotFoundError(signalID))
		return
	}

	if err := h.store.Delete(r.Context(), signalID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IgnoreAuthor はシグナルの作成者を無視リストに登録する。
// 登録と同時に同じ作成者の既存シグナル（このシグナル自身を含む）が削除される。
// POST /api/signals/:id/ignore-author
func (h *SignalHandler) IgnoreAuthor(w http.ResponseWriter, r *http.Request) {
	signalID := chi.URLParam(r, "id")

	signal, err := h.store.FindByID(r.Context(), signalID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if signal == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewSignalNotFoundError(signalID))
		return
	}

	author := &model.IgnoredAuthor{
		Platform: signal.Platform,
		Username: signal.Author,
	}
	purged, err := h.ignores.Add(r.Context(), author)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toIgnoredAuthorResponse(author, purged))
}

// parseSignalFilter はクエリパラメータからシグナルのフィルタ条件を組み立てる。
// 数値パラメータの解析失敗はINVALID_FILTERエラーとして返す。
func parseSignalFilter(r *http.Request) (model.SignalFilter, *model.APIError) {
	var filter model.SignalFilter
	q := r.URL.Query()

	if v := q.Get("min_score"); v != "" {
		minScore, err := strconv.Atoi(v)
		if err != nil || minScore < 0 {
			return filter, model.NewInvalidFilterError("min_scoreは0以上の整数で指定してください")
		}
		filter.MinScore = minScore
	}

	filter.Platform = q.Get("platform")

	if v := q.Get("saved"); v != "" {
		saved, err := strconv.ParseBool(v)
		if err != nil {
			return filter, model.NewInvalidFilterError("savedはtrue/falseで指定してください")
		}
		filter.SavedOnly = saved
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, model.NewInvalidFilterError("limitは1以上の整数で指定してください")
		}
		filter.Limit = limit
	}

	return filter, nil
}

// --- ヘルパー関数 ---

// toSignalResponse はmodel.SignalからAPIレスポンスに変換する。
func toSignalResponse(s *model.Signal) signalResponse {
	return signalResponse{
		ID:              s.ID,
		Platform:        s.Platform,
		PlatformID:      s.PlatformID,
		Title:           s.Title,
		Content:         s.Content,
		Author:          s.Author,
		URL:             s.URL,
		CreatedAt:       s.CreatedAt,
		UrgencyScore:    s.UrgencyScore,
		TechStack:       emptyIfNil(s.TechStack),
		KeywordsMatched: emptyIfNil(s.KeywordsMatched),
		BudgetRange:     s.BudgetRange,
		EstimatedValue:  s.EstimatedValue,
		Status:          string(s.Status),
		Responded:       s.Responded,
		Saved:           s.Saved,
		TemplateUsed:    s.TemplateUsed,
		Notes:           s.Notes,
		ActualRevenue:   s.ActualRevenue,
		ContactedAt:     s.ContactedAt,
		WonAt:           s.WonAt,
		DetectedAt:      s.DetectedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// emptyIfNil はJSONでnullではなく[]を返すためにnilスライスを空スライスに変換する。
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はストア層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeSignalNotFound, model.ErrCodeIgnoreNotFound, model.ErrCodePreferenceNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidStatus, model.ErrCodeInvalidRequest, model.ErrCodeInvalidFilter,
		model.ErrCodeInvalidIgnore, model.ErrCodeInvalidKeywordRule:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
