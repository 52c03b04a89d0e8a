package overpass

import (
	"encoding/json"
	"fmt"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/metrics"
)

// overpassElement Overpassレスポンスのフラットな要素
type overpassElement struct {
	Type  string            `json:"type"`
	ID    int64             `json:"id"`
	Lat   float64           `json:"lat"`
	Lon   float64           `json:"lon"`
	Tags  map[string]string `json:"tags,omitempty"`
	Nodes []int64           `json:"nodes,omitempty"`
}

// overpassResponse Overpassレスポンスのルート
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// ParseResult グラフ再構成の結果
type ParseResult struct {
	Features  []*model.Feature  // 分類済みの全地物
	Buildings []*model.Building // 型付きの建物
	Streets   []*model.Street   // 型付きの道路
	NodeCount int               // 読み込んだnode要素数
	WayCount  int               // 読み込んだway要素数
	Dropped   int               // 分類不能または点数不足で破棄したway数
}

// Parser フラットな要素リストから地物グラフを2パスで再構成する
type Parser struct{}

// NewParser 新しいParserインスタンスを作成
func NewParser() *Parser {
	return &Parser{}
}

// Parse 生のJSONレスポンスを型付き地物に変換する
// 不正なJSONやelementsフィールドの欠落はデータ整合性エラーとして即座に返す
// （接続エラーとは区別され、リトライ対象にならない）
func (p *Parser) Parse(raw []byte) (*ParseResult, error) {
	var resp overpassResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗: %w", err)
	}
	if resp.Elements == nil {
		return nil, fmt.Errorf("レスポンスにelementsフィールドがありません")
	}

	result := &ParseResult{}

	// パス1: node ID → 座標のマップを構築する
	// amenityタグを持つnodeはその場で点地物として出力する
	nodeMap := make(map[int64]model.GeoPoint)
	for _, el := range resp.Elements {
		if el.Type != "node" {
			continue
		}
		result.NodeCount++
		nodeMap[el.ID] = model.GeoPoint{Lat: el.Lat, Lon: el.Lon}

		if _, ok := el.Tags["amenity"]; ok {
			result.Features = append(result.Features, &model.Feature{
				ID:       el.ID,
				Type:     model.FeatureAmenity,
				Geometry: []model.GeoPoint{{Lat: el.Lat, Lon: el.Lon}},
				Tags:     el.Tags,
				Name:     el.Tags["name"],
			})
		}
	}

	// パス2: タグを持つwayを固定優先順位で分類し、node参照を解決する
	for _, el := range resp.Elements {
		if el.Type != "way" {
			continue
		}
		result.WayCount++
		if len(el.Tags) == 0 {
			continue
		}

		featureType, ok := classifyWay(el.Tags)
		if !ok {
			result.Dropped++
			continue
		}

		// 未解決のnode参照は黙って落とす（ジオメトリ長が縮むだけで
		// パース全体は失敗させない）
		geometry := make([]model.GeoPoint, 0, len(el.Nodes))
		for _, nodeID := range el.Nodes {
			if pt, found := nodeMap[nodeID]; found {
				geometry = append(geometry, pt)
			}
		}

		feature := &model.Feature{
			ID:       el.ID,
			Type:     featureType,
			Geometry: geometry,
			Tags:     el.Tags,
			Name:     el.Tags["name"],
		}
		if !feature.IsValid() {
			result.Dropped++
			continue
		}

		result.Features = append(result.Features, feature)
		switch featureType {
		case model.FeatureBuilding:
			result.Buildings = append(result.Buildings, buildingFromFeature(feature))
		case model.FeatureStreet:
			result.Streets = append(result.Streets, streetFromFeature(feature))
		}
	}

	metrics.ParsedElements.WithLabelValues("node").Add(float64(result.NodeCount))
	metrics.ParsedElements.WithLabelValues("way").Add(float64(result.WayCount))
	return result, nil
}

// classifyWay タグから地物分類を決定する
// 最初にマッチした述語が勝つ固定優先順位:
// building → highway → leisure=park/garden → natural=water/waterway → railway
// → landuse → amenity → 分類不能なら破棄
func classifyWay(tags map[string]string) (model.FeatureType, bool) {
	if _, ok := tags["building"]; ok {
		return model.FeatureBuilding, true
	}
	if _, ok := tags["highway"]; ok {
		return model.FeatureStreet, true
	}
	if leisure := tags["leisure"]; leisure == "park" || leisure == "garden" {
		return model.FeaturePark, true
	}
	if tags["natural"] == "water" {
		return model.FeatureWater, true
	}
	if _, ok := tags["waterway"]; ok {
		return model.FeatureWater, true
	}
	if _, ok := tags["railway"]; ok {
		return model.FeatureRailway, true
	}
	if _, ok := tags["landuse"]; ok {
		return model.FeatureLanduse, true
	}
	if _, ok := tags["amenity"]; ok {
		return model.FeatureAmenity, true
	}
	return "", false
}

// buildingFromFeature 汎用地物から型付きの建物を組み立てる
// 数値タグはパース失敗時に未設定のまま残す（エラーにはしない）
func buildingFromFeature(f *model.Feature) *model.Building {
	return &model.Building{
		ID:           f.ID,
		Name:         f.Name,
		Footprint:    f.Geometry,
		Height:       helper.ParseMetricTag(f.Tag("height")),
		Levels:       helper.ParseIntTag(f.Tag("building:levels")),
		BuildingType: f.Tag("building"),
		Tags:         f.Tags,
	}
}

// streetFromFeature 汎用地物から型付きの道路を組み立てる
func streetFromFeature(f *model.Feature) *model.Street {
	return &model.Street{
		ID:          f.ID,
		Name:        f.Name,
		HighwayType: f.Tag("highway"),
		Centerline:  f.Geometry,
		Width:       helper.ParseMetricTag(f.Tag("width")),
		Lanes:       helper.ParseIntTag(f.Tag("lanes")),
		Tags:        f.Tags,
	}
}
