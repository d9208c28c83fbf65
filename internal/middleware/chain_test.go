package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// TestMiddlewareChain_FullStack はRecovery→SecurityHeaders→CORS→Logging→RateLimitの
// チェーンがchi.Routerで正しく動作することを検証する。
func TestMiddlewareChain_FullStack(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(100),
		Burst:           100,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewCORSMiddleware("http://localhost:3000"))
	r.Use(NewLoggingMiddleware(logger))
	r.Use(rl.Middleware())

	r.Get("/api/signals", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	t.Run("normal_request_passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/signals", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		resp := w.Result()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		// セキュリティヘッダーとCORSヘッダーの両方が付与されること
		if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
		}
		if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
		}
		// リクエストログが出力されること
		if !bytes.Contains(buf.Bytes(), []byte("/api/signals")) {
			t.Errorf("request log should contain path: %s", buf.String())
		}
	})

	t.Run("options_preflight_handled_by_cors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/signals", nil)
		req.RemoteAddr = "192.0.2.1:1000"
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusNoContent {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNoContent)
		}
	})
}

// TestMiddlewareChain_PanicRecovered はハンドラーのpanicがチェーン内で回復され
// 500が返ることを検証する。
func TestMiddlewareChain_PanicRecovered(t *testing.T) {
	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())

	r.Get("/api/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/boom", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	// 統一エラーフォーマットで返ること
	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want %q", body.Code, "INTERNAL_ERROR")
	}
}

// TestMiddlewareChain_RateLimitShortCircuits はレート制限超過時に
// ハンドラーが呼ばれないことを検証する。
func TestMiddlewareChain_RateLimitShortCircuits(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(0.001),
		Burst:           1,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	handlerCalls := 0
	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.Use(rl.Middleware())
	r.Get("/api/signals", func(w http.ResponseWriter, r *http.Request) {
		handlerCalls++
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/signals", nil)
		req.RemoteAddr = "192.0.2.50:1000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
	}

	if handlerCalls != 1 {
		t.Errorf("handlerCalls = %d, want 1", handlerCalls)
	}
}
