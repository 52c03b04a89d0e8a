package model

const (
	// MetersPerLane 車線数から幅を推定する際の1車線あたりの幅（メートル）
	MetersPerLane = 3.0
	// DefaultStreetWidth highwayタグが未知の種別だった場合のフォールバック幅（メートル）
	DefaultStreetWidth = 5.0
)

// HighwayBaseWidths highway種別ごとの推定基準幅（メートル）
var HighwayBaseWidths = map[string]float64{
	"motorway":     15.0,
	"trunk":        12.0,
	"primary":      10.0,
	"secondary":    8.0,
	"tertiary":     7.0,
	"residential":  6.0,
	"unclassified": 5.0,
	"service":      4.0,
	"pedestrian":   4.0,
	"cycleway":     2.5,
	"footway":      2.0,
	"path":         1.5,
}

// DefaultHighwayClasses フィルタ未指定時に有効となるhighway種別の一覧
var DefaultHighwayClasses = []string{
	"motorway", "trunk", "primary", "secondary", "tertiary",
	"residential", "unclassified", "service", "pedestrian",
	"footway", "cycleway", "path",
}

// Street 道路の中心線と幅情報を持つ地物
type Street struct {
	ID          int64             `json:"id"`              // OSM way ID
	Name        string            `json:"name,omitempty"`  // 道路名（あれば）
	HighwayType string            `json:"highway_type"`    // highwayタグの値
	Centerline  []GeoPoint        `json:"centerline"`      // 中心線（2点以上）
	Width       *float64          `json:"width,omitempty"` // widthタグの明示的な幅（メートル）
	Lanes       *int              `json:"lanes,omitempty"` // lanesタグの車線数
	Tags        map[string]string `json:"tags,omitempty"`  // 元タグ
}

// WidthMeters 幅を導出する。明示的なwidthタグ → 種別基準幅（車線数で補正）の順
func (s *Street) WidthMeters() float64 {
	if s.Width != nil {
		return *s.Width
	}
	base, ok := HighwayBaseWidths[s.HighwayType]
	if !ok {
		base = DefaultStreetWidth
	}
	if s.Lanes != nil {
		if laneWidth := float64(*s.Lanes) * MetersPerLane; laneWidth > base {
			base = laneWidth
		}
	}
	return base
}
