// Package shortener は外部のURL短縮サービスのHTTPクライアントを提供する。
// 服薬記録に添付された画像URLを保存前に短縮するために使用する。
package shortener

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/medchart/internal/security"
)

// maxResponseSize は短縮サービス応答の最大読み取りサイズ。
// 正常な応答は短縮URL1行のみであり、これを大きく超える応答は不正とみなす。
const maxResponseSize = 2 * 1024

// httpDoer はHTTPリクエストの実行を抽象化する。テストで差し替える。
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client はURL短縮サービスのクライアント。
// 外向きリクエストにはSSRF防止付きのHTTPクライアントを使用し、
// 短縮対象のURL自体も事前に検証する。
type Client struct {
	httpClient httpDoer
	baseURL    string
	guard      security.URLGuardService
}

// NewClient はClientを生成する。
// baseURLは短縮サービスのエンドポイント（例: https://tinyurl.com/api-create.php）。
func NewClient(guard security.URLGuardService, baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: guard.NewSafeClient(timeout),
		baseURL:    baseURL,
		guard:      guard,
	}
}

// Shorten はrawURLの短縮形を返す。
// リトライは行わない。呼び出し側は失敗時に元のURLへフォールバックする想定。
func (c *Client) Shorten(ctx context.Context, rawURL string) (string, error) {
	if err := c.guard.ValidateURL(rawURL); err != nil {
		return "", fmt.Errorf("unsafe image URL: %w", err)
	}

	endpoint := c.baseURL + "?url=" + url.QueryEscape(rawURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build shortener request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("shortener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shortener returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read shortener response: %w", err)
	}

	short := strings.TrimSpace(string(body))
	if short == "" {
		return "", fmt.Errorf("shortener returned empty response")
	}
	// 応答がURLの形をしていることを確認する
	parsed, err := url.ParseRequestURI(short)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("shortener returned invalid URL: %q", short)
	}

	return short, nil
}
