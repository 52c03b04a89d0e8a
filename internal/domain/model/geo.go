package model

import (
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusMeters 地球の半径（メートル）
const EarthRadiusMeters = 6371000.0

// GeoPoint WGS84の緯度経度で表される地点（不変値として扱う）
type GeoPoint struct {
	Lat float64 `json:"lat"` // 緯度（度）
	Lon float64 `json:"lon"` // 経度（度）
}

// DistanceTo Haversine公式による2点間の大円距離を計算する（メートル）
func (p GeoPoint) DistanceTo(other GeoPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lon1 := p.Lon * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	lon2 := other.Lon * math.Pi / 180
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// ToOrbPoint orb.Point（[lon, lat]順）に変換する
func (p GeoPoint) ToOrbPoint() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// GeoBoundingBox 南西・北東の角で囲まれた矩形領域（度単位）
// 不変条件: South < North, West < East（呼び出し側が妥当な半径を渡す責任を持つ）
type GeoBoundingBox struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Center 境界ボックスの中心点（各辺の中点）を返す
func (b GeoBoundingBox) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.South + b.North) / 2,
		Lon: (b.West + b.East) / 2,
	}
}

// WidthMeters 中心緯度における東西方向の幅をHaversineで計算する（メートル）
func (b GeoBoundingBox) WidthMeters() float64 {
	centerLat := (b.South + b.North) / 2
	return GeoPoint{Lat: centerLat, Lon: b.West}.DistanceTo(GeoPoint{Lat: centerLat, Lon: b.East})
}

// HeightMeters 南北方向の高さをHaversineで計算する（メートル）
func (b GeoBoundingBox) HeightMeters() float64 {
	centerLon := (b.West + b.East) / 2
	return GeoPoint{Lat: b.South, Lon: centerLon}.DistanceTo(GeoPoint{Lat: b.North, Lon: centerLon})
}

// ToOrbBound orb.Bound に変換する
func (b GeoBoundingBox) ToOrbBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}
