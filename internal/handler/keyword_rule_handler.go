package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// RuleStoreInterface はキーワードルールハンドラーが必要とするストアインターフェース。
type RuleStoreInterface interface {
	// List は全キーワードルールをpriority降順で返す。
	List(ctx context.Context) ([]model.KeywordRule, error)
	// SaveBatch は削除とUPSERTをまとめて適用する。
	SaveBatch(ctx context.Context, batch model.KeywordRuleBatch) error
}

// KeywordRuleHandler は動的キーワードルール管理のHTTPハンドラー。
type KeywordRuleHandler struct {
	store RuleStoreInterface
}

// NewKeywordRuleHandler はKeywordRuleHandlerを生成する。
func NewKeywordRuleHandler(store RuleStoreInterface) *KeywordRuleHandler {
	return &KeywordRuleHandler{store: store}
}

// keywordRuleRequest はバッチ保存のUPSERT対象ルール。
type keywordRuleRequest struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	Weight   int    `json:"weight"`
	Active   bool   `json:"active"`
	Priority int    `json:"priority"`
}

// saveBatchRequest はキーワードルール一括保存リクエストのボディ。
type saveBatchRequest struct {
	Deletes []string             `json:"deletes"`
	Rules   []keywordRuleRequest `json:"rules"`
}

// keywordRuleResponse はキーワードルールのAPIレスポンス。
type keywordRuleResponse struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	Keyword   string    `json:"keyword"`
	Category  string    `json:"category"`
	Weight    int       `json:"weight"`
	Active    bool      `json:"active"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// keywordRuleListResponse はキーワードルール一覧のAPIレスポンス。
type keywordRuleListResponse struct {
	Rules []keywordRuleResponse `json:"rules"`
	Count int                   `json:"count"`
}

// ListRules は全キーワードルールを返す。
// GET /api/keyword-rules
func (h *KeywordRuleHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := keywordRuleListResponse{
		Rules: make([]keywordRuleResponse, 0, len(rules)),
		Count: len(rules),
	}
	for _, rule := range rules {
		resp.Rules = append(resp.Rules, toKeywordRuleResponse(rule))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SaveBatch は削除とUPSERTをまとめて適用する。
// 各サブ操作は冪等であり、一部のみ適用された状態も許容される。
// 保存後の全ルール一覧を返す。変更は次の取り込みサイクルから反映される。
// POST /api/keyword-rules
func (h *KeywordRuleHandler) SaveBatch(w http.ResponseWriter, r *http.Request) {
	var req saveBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	batch := model.KeywordRuleBatch{
		DeleteIDs: req.Deletes,
		Upserts:   make([]model.KeywordRule, 0, len(req.Rules)),
	}
	for _, rule := range req.Rules {
		if rule.Keyword == "" {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidKeywordRuleError("キーワードが空です"))
			return
		}
		if rule.Weight < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidKeywordRuleError("重みは0以上で指定してください"))
			return
		}

		category := model.KeywordRuleCategory(rule.Category)
		if category == "" {
			category = model.CategoryCrisis
		}
		if category != model.CategoryCrisis && category != model.CategoryOpportunity {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidKeywordRuleError("カテゴリには crisis または opportunity を指定してください"))
			return
		}

		batch.Upserts = append(batch.Upserts, model.KeywordRule{
			ID:       rule.ID,
			Platform: rule.Platform,
			Keyword:  rule.Keyword,
			Category: category,
			Weight:   rule.Weight,
			Active:   rule.Active,
			Priority: rule.Priority,
		})
	}

	if err := h.store.SaveBatch(r.Context(), batch); err != nil {
		handleServiceError(w, err)
		return
	}

	h.ListRules(w, r)
}

// toKeywordRuleResponse はmodel.KeywordRuleからAPIレスポンスに変換する。
func toKeywordRuleResponse(rule model.KeywordRule) keywordRuleResponse {
	return keywordRuleResponse{
		ID:        rule.ID,
		Platform:  rule.Platform,
		Keyword:   rule.Keyword,
		Category:  string(rule.Category),
		Weight:    rule.Weight,
		Active:    rule.Active,
		Priority:  rule.Priority,
		CreatedAt: rule.CreatedAt,
		UpdatedAt: rule.UpdatedAt,
	}
}
