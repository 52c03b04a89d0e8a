package model

// FeatureType 地物の分類
type FeatureType string

const (
	FeatureBuilding FeatureType = "building"
	FeatureStreet   FeatureType = "street"
	FeaturePark     FeatureType = "park"
	FeatureWater    FeatureType = "water"
	FeatureRailway  FeatureType = "railway"
	FeatureLanduse  FeatureType = "landuse"
	FeatureAmenity  FeatureType = "amenity"
)

// MinPoints 分類ごとに必要な最小ジオメトリ点数を返す
// ポリゴン系は3点以上、ポリライン系は2点以上、アメニティは単一点でも成立する
func (t FeatureType) MinPoints() int {
	switch t {
	case FeatureBuilding, FeaturePark, FeatureLanduse:
		return 3
	case FeatureStreet, FeatureRailway, FeatureWater:
		return 2
	case FeatureAmenity:
		return 1
	default:
		return 2
	}
}

// IsPolygonal ポリゴンとして扱う分類かどうか
func (t FeatureType) IsPolygonal() bool {
	switch t {
	case FeatureBuilding, FeaturePark, FeatureLanduse:
		return true
	default:
		return false
	}
}

// Feature OSMのway/nodeから再構成された汎用の地物
type Feature struct {
	ID       int64             `json:"id"`             // OSM要素ID
	Type     FeatureType       `json:"type"`           // 分類
	Geometry []GeoPoint        `json:"geometry"`       // 順序付きの座標列（ポリゴンまたはポリライン）
	Tags     map[string]string `json:"tags"`           // タグ（キー→値、挿入順は意味を持たない）
	Name     string            `json:"name,omitempty"` // 表示名（nameタグ由来、空の場合あり）
}

// DisplayName 表示名を返す。nameタグがなければ分類名で代用する
func (f *Feature) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return string(f.Type)
}

// IsValid 分類ごとの最小点数の不変条件を満たしているか
func (f *Feature) IsValid() bool {
	return len(f.Geometry) >= f.Type.MinPoints()
}

// Tag タグ値を取得する（存在しない場合は空文字列）
func (f *Feature) Tag(key string) string {
	if f.Tags == nil {
		return ""
	}
	return f.Tags[key]
}
