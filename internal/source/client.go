package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// userAgent は外部プラットフォームへのリクエストで使用するUA文字列。
const userAgent = "Beacon/1.0 Signal Scanner"

// defaultRequestsPerMin はアダプターごとのデフォルトのリクエストレート。
// 各プラットフォームの未認証レート制限より十分低く設定している。
const defaultRequestsPerMin = 30

// Client はアダプター共通のHTTP取得ヘルパー。
// SSRF防止付きのhttp.Clientをラップし、レート制限・レスポンスサイズ制限・
// User-Agent付与を行う。
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxBodySize int64
}

// NewClient はClientを生成する。
// httpClientにはsecurity.SSRFGuardService.NewSafeClientが生成した
// クライアントを渡す。テストではhttptest用のクライアントを注入できる。
func NewClient(httpClient *http.Client, maxBodySize int64, requestsPerMin int) *Client {
	if requestsPerMin <= 0 {
		requestsPerMin = defaultRequestsPerMin
	}
	return &Client{
		httpClient:  httpClient,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMin)), requestsPerMin),
		maxBodySize: maxBodySize,
	}
}

// GetBody はGETリクエストを実行してレスポンスボディを返す。
// レート制限を超えている場合はトークンが補充されるまで待機する。
// 200以外のステータスはエラーとして扱う。
func (c *Client) GetBody(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("レート制限の待機に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成に失敗しました: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("予期しないHTTPステータス: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	return body, nil
}

// GetJSON はGETリクエストを実行してレスポンスJSONをvにデコードする。
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, v interface{}) error {
	body, err := c.GetBody(ctx, rawURL, header)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("JSONのデコードに失敗しました: %w", err)
	}

	return nil
}
