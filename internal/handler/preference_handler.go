package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/beacon/internal/model"
)

// PreferenceStoreInterface は設定ハンドラーが必要とするストアインターフェース。
type PreferenceStoreInterface interface {
	// Get は指定名の設定値を取得する。見つからない場合はnilを返す。
	Get(ctx context.Context, name string) (*model.Preference, error)
	// Set は設定値を冪等にUPSERTする。
	Set(ctx context.Context, name, value string) (*model.Preference, error)
}

// PreferenceHandler はオペレーター設定のHTTPハンドラー。
type PreferenceHandler struct {
	store PreferenceStoreInterface
}

// NewPreferenceHandler はPreferenceHandlerを生成する。
func NewPreferenceHandler(store PreferenceStoreInterface) *PreferenceHandler {
	return &PreferenceHandler{store: store}
}

// preferenceResponse は設定値のAPIレスポンス。
type preferenceResponse struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// setPreferenceRequest は設定値更新リクエストのボディ。
type setPreferenceRequest struct {
	Value string `json:"value"`
}

// GetPreference は指定名の設定値を返す。
// GET /api/preferences/:name
func (h *PreferenceHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	pref, err := h.store.Get(r.Context(), name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if pref == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewPreferenceNotFoundError(name))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPreferenceResponse(pref))
}

// SetPreference は設定値を冪等に保存する。
// PUT /api/preferences/:name
func (h *PreferenceHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req setPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	pref, err := h.store.Set(r.Context(), name, req.Value)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toPreferenceResponse(pref))
}

// toPreferenceResponse はmodel.PreferenceからAPIレスポンスに変換する。
func toPreferenceResponse(pref *model.Preference) preferenceResponse {
	return preferenceResponse{
		Name:      pref.Name,
		Value:     pref.Value,
		UpdatedAt: pref.UpdatedAt,
	}
}
