package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/beacon/internal/model"
)

// IgnoreStoreInterface は無視リストハンドラーが必要とするストアインターフェース。
type IgnoreStoreInterface interface {
	// Add は無視作成者を登録し、既存の一致シグナルの削除件数を返す。
	Add(ctx context.Context, author *model.IgnoredAuthor) (purged int64, err error)
	// FindByID は指定IDの無視作成者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.IgnoredAuthor, error)
	// List は無視作成者の一覧を登録日時降順で返す。
	List(ctx context.Context) ([]*model.IgnoredAuthor, error)
	// Remove は指定IDの無視作成者を登録解除する。
	Remove(ctx context.Context, id string) error
}

// IgnoreHandler は無視作成者リスト管理のHTTPハンドラー。
type IgnoreHandler struct {
	store IgnoreStoreInterface
}

// NewIgnoreHandler はIgnoreHandlerを生成する。
func NewIgnoreHandler(store IgnoreStoreInterface) *IgnoreHandler {
	return &IgnoreHandler{store: store}
}

// addIgnoreRequest は無視作成者登録リクエストのボディ。
type addIgnoreRequest struct {
	Platform string `json:"platform"`
	Username string `json:"username"`
}

// ignoredAuthorResponse は無視作成者のAPIレスポンス。
// PurgedSignalsは登録時に削除された既存シグナルの件数。
type ignoredAuthorResponse struct {
	ID            string    `json:"id"`
	Platform      string    `json:"platform"`
	Username      string    `json:"username"`
	PurgedSignals int64     `json:"purged_signals"`
	CreatedAt     time.Time `json:"created_at"`
}

// ignoreListResponse は無視作成者一覧のAPIレスポンス。
type ignoreListResponse struct {
	Ignores []ignoredAuthorResponse `json:"ignores"`
	Count   int                     `json:"count"`
}

// AddIgnore は無視作成者を登録する。
// 登録と同時に同じ (platform, username) の既存シグナルが削除される。
// すでに登録済みの場合も成功として扱う（冪等）。
// POST /api/ignores
func (h *IgnoreHandler) AddIgnore(w http.ResponseWriter, r *http.Request) {
	var req addIgnoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	if req.Platform == "" || req.Username == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidIgnoreError("プラットフォームとユーザー名は必須です"))
		return
	}

	author := &model.IgnoredAuthor{
		Platform: req.Platform,
		Username: req.Username,
	}
	purged, err := h.store.Add(r.Context(), author)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toIgnoredAuthorResponse(author, purged))
}

// ListIgnores は無視作成者の一覧を返す。
// GET /api/ignores
func (h *IgnoreHandler) ListIgnores(w http.ResponseWriter, r *http.Request) {
	authors, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := ignoreListResponse{
		Ignores: make([]ignoredAuthorResponse, 0, len(authors)),
		Count:   len(authors),
	}
	for _, a := range authors {
		resp.Ignores = append(resp.Ignores, toIgnoredAuthorResponse(a, 0))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RemoveIgnore は無視作成者を登録解除する。
// 過去に削除されたシグナルは復元されない。
// DELETE /api/ignores/:id
func (h *IgnoreHandler) RemoveIgnore(w http.ResponseWriter, r *http.Request) {
	ignoreID := chi.URLParam(r, "id")

	author, err := h.store.FindByID(r.Context(), ignoreID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if author == nil {
		writeAPIErrorResponse(w, http.StatusNotFound,
			model.NewIgnoreNotFoundError(ignoreID))
		return
	}

	if err := h.store.Remove(r.Context(), ignoreID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toIgnoredAuthorResponse はmodel.IgnoredAuthorからAPIレスポンスに変換する。
func toIgnoredAuthorResponse(a *model.IgnoredAuthor, purged int64) ignoredAuthorResponse {
	return ignoredAuthorResponse{
		ID:            a.ID,
		Platform:      a.Platform,
		Username:      a.Username,
		PurgedSignals: purged,
		CreatedAt:     a.CreatedAt,
	}
}
