package model

const (
	// MetersPerLevel 階数から高さを推定する際の1階あたりの高さ（メートル）
	MetersPerLevel = 3.5
	// DefaultBuildingHeight 高さも階数も不明な建物のフォールバック高さ（メートル）
	DefaultBuildingHeight = 10.0
)

// Building 建物のフットプリントと高さ情報を持つ地物
type Building struct {
	ID           int64             `json:"id"`                      // OSM way ID
	Name         string            `json:"name,omitempty"`          // 建物名（あれば）
	Footprint    []GeoPoint        `json:"footprint"`               // 外周のポリゴン（順序付き）
	Height       *float64          `json:"height,omitempty"`        // heightタグの明示的な高さ（メートル）
	Levels       *int              `json:"levels,omitempty"`        // building:levelsタグの階数
	BuildingType string            `json:"building_type,omitempty"` // buildingタグの値（yes, residentialなど）
	Tags         map[string]string `json:"tags,omitempty"`          // 元タグ
}

// HeightMeters 高さをフォールバックチェーンで導出する
// 優先順位: 明示的なheight → 階数×3.5m → デフォルト10.0m（常にこの順で適用）
func (b *Building) HeightMeters() float64 {
	if b.Height != nil {
		return *b.Height
	}
	if b.Levels != nil {
		return float64(*b.Levels) * MetersPerLevel
	}
	return DefaultBuildingHeight
}
