package repository

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"CityScape3D/internal/domain/model"
)

// defaultCacheSize データセットキャッシュの既定エントリ数
const defaultCacheSize = 32

// BuildCacheKey 中心点・半径・フィルタから丸め済みの複合キャッシュキーを組み立てる
// 座標は小数4桁（約11m）、半径は整数メートルに丸める。同じキーに丸まる
// リクエストは再取得せずキャッシュを返す
func BuildCacheKey(center model.GeoPoint, radiusMeters float64, filter model.FeatureFilter) string {
	return fmt.Sprintf("%.4f_%.4f_%.0f_%s", center.Lat, center.Lon, radiusMeters, filter.CacheFragment())
}

// DatasetCache 取得済みデータセットのLRUキャッシュ
// オーケストレーター（ユースケース）が所有し、処理ユニット自身は保持しない
// 明示的なResetで全体を無効化する（部分無効化はしない）
type DatasetCache struct {
	cache *lru.Cache[string, *model.Dataset]
}

// NewDatasetCache 新しいDatasetCacheインスタンスを作成
func NewDatasetCache() (*DatasetCache, error) {
	cache, err := lru.New[string, *model.Dataset](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("キャッシュの初期化に失敗: %w", err)
	}
	return &DatasetCache{cache: cache}, nil
}

// Get キーに対応するデータセットを返す
func (c *DatasetCache) Get(key string) (*model.Dataset, bool) {
	return c.cache.Get(key)
}

// Add データセットをキャッシュに追加する
func (c *DatasetCache) Add(key string, ds *model.Dataset) {
	c.cache.Add(key, ds)
}

// FindByID データセットIDでキャッシュ内を線形探索する
// エントリ数は高々defaultCacheSizeなので走査コストは無視できる
func (c *DatasetCache) FindByID(id string) (*model.Dataset, bool) {
	for _, key := range c.cache.Keys() {
		if ds, ok := c.cache.Peek(key); ok && ds.ID == id {
			return ds, true
		}
	}
	return nil, false
}

// Reset キャッシュ全体を破棄する
func (c *DatasetCache) Reset() {
	c.cache.Purge()
}

// Len 現在のエントリ数を返す
func (c *DatasetCache) Len() int {
	return c.cache.Len()
}
