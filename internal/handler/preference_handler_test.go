package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/beacon/internal/model"
)

// mockPreferenceStore はPreferenceStoreInterfaceのモック実装。
type mockPreferenceStore struct {
	getFn func(ctx context.Context, name string) (*model.Preference, error)
	setFn func(ctx context.Context, name, value string) (*model.Preference, error)
}

func (m *mockPreferenceStore) Get(ctx context.Context, name string) (*model.Preference, error) {
	if m.getFn != nil {
		return m.getFn(ctx, name)
	}
	return nil, nil
}

func (m *mockPreferenceStore) Set(ctx context.Context, name, value string) (*model.Preference, error) {
	if m.setFn != nil {
		return m.setFn(ctx, name, value)
	}
	return &model.Preference{Name: name, Value: value}, nil
}

// --- GET /api/preferences/:name テスト ---

func TestPreferenceHandler_GetPreference_Success(t *testing.T) {
	updatedAt := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	store := &mockPreferenceStore{
		getFn: func(ctx context.Context, name string) (*model.Preference, error) {
			if name != "scan_interval" {
				t.Errorf("name = %q, want %q", name, "scan_interval")
			}
			return &model.Preference{Name: name, Value: "15m", UpdatedAt: updatedAt}, nil
		},
	}
	h := NewPreferenceHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/preferences/scan_interval", nil)
	req = withChiURLParam(req, "name", "scan_interval")
	w := httptest.NewRecorder()

	h.GetPreference(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Name != "scan_interval" {
		t.Errorf("name = %q, want %q", body.Name, "scan_interval")
	}
	if body.Value != "15m" {
		t.Errorf("value = %q, want %q", body.Value, "15m")
	}
	if !body.UpdatedAt.Equal(updatedAt) {
		t.Errorf("updated_at = %v, want %v", body.UpdatedAt, updatedAt)
	}
}

func TestPreferenceHandler_GetPreference_NotFound_Returns404(t *testing.T) {
	h := NewPreferenceHandler(&mockPreferenceStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/preferences/missing", nil)
	req = withChiURLParam(req, "name", "missing")
	w := httptest.NewRecorder()

	h.GetPreference(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
	respBody := parseAPIErrorResponse(t, w)
	if respBody["code"] != model.ErrCodePreferenceNotFound {
		t.Errorf("code = %q, want %q", respBody["code"], model.ErrCodePreferenceNotFound)
	}
}

// --- PUT /api/preferences/:name テスト ---

func TestPreferenceHandler_SetPreference_Success(t *testing.T) {
	var savedName, savedValue string
	store := &mockPreferenceStore{
		setFn: func(ctx context.Context, name, value string) (*model.Preference, error) {
			savedName = name
			savedValue = value
			return &model.Preference{Name: name, Value: value, UpdatedAt: time.Now().UTC()}, nil
		},
	}
	h := NewPreferenceHandler(store)

	body := `{"value": "dark"}`
	req := httptest.NewRequest(http.MethodPut, "/api/preferences/theme", bytes.NewBufferString(body))
	req = withChiURLParam(req, "name", "theme")
	w := httptest.NewRecorder()

	h.SetPreference(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if savedName != "theme" || savedValue != "dark" {
		t.Errorf("saved = (%q, %q), want (theme, dark)", savedName, savedValue)
	}

	var respBody preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if respBody.Value != "dark" {
		t.Errorf("value = %q, want %q", respBody.Value, "dark")
	}
}

func TestPreferenceHandler_SetPreference_InvalidJSON_Returns400(t *testing.T) {
	h := NewPreferenceHandler(&mockPreferenceStore{})

	req := httptest.NewRequest(http.MethodPut, "/api/preferences/theme", bytes.NewBufferString("{invalid"))
	req = withChiURLParam(req, "name", "theme")
	w := httptest.NewRecorder()

	h.SetPreference(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	respBody := parseAPIErrorResponse(t, w)
	if respBody["code"] != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", respBody["code"], model.ErrCodeInvalidRequest)
	}
}
