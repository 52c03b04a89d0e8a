package overpass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"CityScape3D/internal/metrics"
)

const (
	// maxAttempts 1回のFetchで試行する最大回数
	maxAttempts = 3
	// requestTimeout 1試行あたりのHTTPタイムアウト
	requestTimeout = 30 * time.Second
)

// backoffUnit 線形バックオフの単位時間（attempt番号×この値だけ待つ）
// テストから短縮できるよう変数にしている
var backoffUnit = 2000 * time.Millisecond

// DefaultEndpoints 等価なOverpass APIエンドポイントの既定一覧
var DefaultEndpoints = []string{
	"https://overpass-api.de/api/interpreter",
	"https://overpass.kumi.systems/api/interpreter",
	"https://overpass.osm.ch/api/interpreter",
}

// FailureCause 最終失敗の原因種別
type FailureCause string

const (
	CauseTimeout     FailureCause = "timeout"
	CauseRateLimited FailureCause = "rate_limited"
	CauseServerError FailureCause = "server_error"
)

// NetworkError リトライを使い果たした致命的なネットワークエラー
// 原因（タイムアウトかサーバエラーか）を区別して保持する
type NetworkError struct {
	Cause    FailureCause
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("ネットワークエラー (%s): %d回の試行が全て失敗しました: %v", e.Cause, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client 複数エンドポイントへのフェイルオーバー付き取得クライアント
// ローテーションインデックスは呼び出しをまたいで共有され、負荷分散と
// 代替エンドポイント試行に使う（リクエストごとの乱択ではない）
// グローバル状態ではなく明示的なクライアントオブジェクトとして保持するため、
// テストでは独立したクライアントを並列に生成できる
type Client struct {
	endpoints  []string
	httpClient *http.Client

	mu    sync.Mutex
	index int
}

// NewClient 新しいClientインスタンスを作成する。endpointsが空なら既定一覧を使う
func NewClient(endpoints ...string) *Client {
	if len(endpoints) == 0 {
		endpoints = DefaultEndpoints
	}
	return &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// CurrentEndpoint 現在のローテーション位置のエンドポイントを返す
// 成功時にインデックスは進まないため、Fetch直後は成功したエンドポイントを指す
func (c *Client) CurrentEndpoint() string {
	return c.currentEndpoint()
}

// RotationIndex 現在のローテーションインデックスを返す
func (c *Client) RotationIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Fetch クエリをPOSTして生のレスポンスボディを返す
// 各試行は endpoints[index mod N] に対して行い、2xxなら即座にボディを返す
// 429・504・クライアント側タイムアウトはインデックスを進め、試行が残っていれば
// 2000ms×試行番号の線形バックオフ後にリトライする。その他の失敗も同様に
// ローテーションして試行予算内でリトライする。3回使い果たしたら原因を
// 明示した*NetworkErrorを返す。ctxは各HTTPリクエストまで伝播する
func (c *Client) Fetch(ctx context.Context, query string) ([]byte, error) {
	var lastErr error
	lastCause := CauseServerError

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		endpoint := c.currentEndpoint()
		metrics.FetchAttempts.WithLabelValues(endpoint).Inc()

		body, cause, err := c.post(ctx, endpoint, query)
		if err == nil {
			return body, nil
		}
		lastErr = err
		lastCause = cause
		c.advance()

		log.Printf("⚠️ Overpass取得失敗 (attempt %d/%d, %s): %v", attempt, maxAttempts, endpoint, err)
		metrics.FetchRetries.WithLabelValues(string(cause)).Inc()

		if attempt < maxAttempts {
			if err := sleepContext(ctx, backoffUnit*time.Duration(attempt)); err != nil {
				lastErr = err
				lastCause = CauseTimeout
				break
			}
		}
	}

	metrics.FetchFailures.WithLabelValues(string(lastCause)).Inc()
	return nil, &NetworkError{Cause: lastCause, Attempts: maxAttempts, Err: lastErr}
}

// post 1試行分のHTTP POSTを実行する
func (c *Client) post(ctx context.Context, endpoint, query string) ([]byte, FailureCause, error) {
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, CauseServerError, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, CauseTimeout, fmt.Errorf("リクエストがタイムアウトしました: %w", err)
		}
		return nil, CauseServerError, fmt.Errorf("リクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, CauseServerError, fmt.Errorf("ボディの読み取りに失敗: %w", err)
		}
		return body, "", nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, CauseRateLimited, fmt.Errorf("レート制限されました (status %d)", resp.StatusCode)
	case http.StatusGatewayTimeout:
		return nil, CauseTimeout, fmt.Errorf("ゲートウェイタイムアウト (status %d)", resp.StatusCode)
	default:
		return nil, CauseServerError, fmt.Errorf("エラーステータスが返されました (status %d)", resp.StatusCode)
	}
}

// currentEndpoint 現在のローテーション位置のエンドポイントを返す
func (c *Client) currentEndpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoints[c.index%len(c.endpoints)]
}

// advance ローテーションインデックスを1つ進める
func (c *Client) advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index++
}

// isTimeout クライアント側タイムアウトかどうかを判定する
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sleepContext ctxのキャンセルを尊重しながら待機する
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
