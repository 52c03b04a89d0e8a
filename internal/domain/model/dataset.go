package model

import (
	"fmt"
	"time"
)

// FetchRequest 地物取得に必要な全ての条件を保持する
type FetchRequest struct {
	Center         GeoPoint      `json:"center"`                    // 必須：取得領域の中心点（投影原点になる）
	RadiusMeters   float64       `json:"radius_meters"`             // 必須：取得半径（メートル）
	Filter         FeatureFilter `json:"filter"`                    // 取得対象クラスのトグル
	TimeoutSeconds int           `json:"timeout_seconds,omitempty"` // 外側のウォールクロックタイムアウト（0ならデフォルト）
}

// Dataset 1回の取得で構築された地物コレクション
// 投影原点・境界ボックス・取得時刻と、分類済みの地物リストを排他的に所有する
// 構築後は不変として扱う
type Dataset struct {
	ID        string         `json:"id"`         // データセットID（uuid）
	Origin    GeoPoint       `json:"origin"`     // ローカル座標系の投影原点
	Bounds    GeoBoundingBox `json:"bounds"`     // 取得に使用した境界ボックス
	FetchedAt time.Time      `json:"fetched_at"` // ダウンロード時刻
	Features  []*Feature     `json:"features"`   // 分類済みの全地物
	Buildings []*Building    `json:"buildings"`  // 型付きの建物リスト
	Streets   []*Street      `json:"streets"`    // 型付きの道路リスト
}

// CountsByType 分類ごとの地物数を返す
func (d *Dataset) CountsByType() map[FeatureType]int {
	counts := make(map[FeatureType]int)
	for _, f := range d.Features {
		counts[f.Type]++
	}
	return counts
}

// FeaturesOfType 指定分類の地物のみを抽出する
func (d *Dataset) FeaturesOfType(t FeatureType) []*Feature {
	var filtered []*Feature
	for _, f := range d.Features {
		if f.Type == t {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// Summary 人間可読なデータセット概要を返す
func (d *Dataset) Summary() string {
	return fmt.Sprintf("地物 %d件 (建物:%d 道路:%d) 領域 %.0fm x %.0fm 原点(%.5f, %.5f)",
		len(d.Features), len(d.Buildings), len(d.Streets),
		d.Bounds.WidthMeters(), d.Bounds.HeightMeters(),
		d.Origin.Lat, d.Origin.Lon)
}

// FetchRun 取得実行1回分の記録（アーカイブ用）
type FetchRun struct {
	ID             string    `json:"id" db:"id"`
	CenterLat      float64   `json:"center_lat" db:"center_lat"`
	CenterLon      float64   `json:"center_lon" db:"center_lon"`
	RadiusMeters   float64   `json:"radius_meters" db:"radius_meters"`
	FeatureCount   int       `json:"feature_count" db:"feature_count"`
	BuildingCount  int       `json:"building_count" db:"building_count"`
	StreetCount    int       `json:"street_count" db:"street_count"`
	DurationMillis int64     `json:"duration_ms" db:"duration_ms"`
	Endpoint       string    `json:"endpoint" db:"endpoint"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
