// Package elevation OpenTopography Global DEM APIからの標高ラスタ取得とデコードを担当する
package elevation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"CityScape3D/internal/domain/model"
)

// defaultBaseURL OpenTopography Global DEM APIのベースURL
const defaultBaseURL = "https://portal.opentopography.org/API/globaldem"

// OpenTopoClient OpenTopography APIの取得クライアント
type OpenTopoClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenTopoClient 新しいOpenTopoClientインスタンスを作成
func NewOpenTopoClient(apiKey string) *OpenTopoClient {
	return &OpenTopoClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// FetchRaster 境界ボックスと解像度を指定してGTiffラスタのバイト列を取得する
// 解像度と境界はネットワーク呼び出しの前に検証する
func (c *OpenTopoClient) FetchRaster(ctx context.Context, bbox model.GeoBoundingBox, res model.Resolution) ([]byte, error) {
	demType, err := res.DEMType()
	if err != nil {
		return nil, err
	}
	if bbox.South >= bbox.North || bbox.West >= bbox.East {
		return nil, fmt.Errorf("境界ボックスが不正です: south=%f north=%f west=%f east=%f",
			bbox.South, bbox.North, bbox.West, bbox.East)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("OpenTopography APIキーが設定されていません (OPENTOPO_API_KEY)")
	}

	params := url.Values{}
	params.Set("demtype", demType)
	params.Set("south", fmt.Sprintf("%.7f", bbox.South))
	params.Set("north", fmt.Sprintf("%.7f", bbox.North))
	params.Set("west", fmt.Sprintf("%.7f", bbox.West))
	params.Set("east", fmt.Sprintf("%.7f", bbox.East))
	params.Set("outputFormat", "GTiff")
	params.Set("API_Key", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("標高データの取得に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("標高APIからエラーステータスが返されました (status %d): %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ラスタの読み取りに失敗: %w", err)
	}
	return data, nil
}
