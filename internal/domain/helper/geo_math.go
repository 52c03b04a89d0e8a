package helper

import (
	"fmt"
	"math"

	"CityScape3D/internal/domain/model"
)

// ToLocal 緯度経度を原点基準のローカル平面座標に変換する（メートル）
// 正距円筒図法の近似で、数km程度の狭い領域でのみ有効。曲率補正は行わない
// zは呼び出し側に委ねる
func ToLocal(lat, lon, originLat, originLon float64) (x, y float64) {
	x = (lon - originLon) * math.Cos(originLat*math.Pi/180) * model.EarthRadiusMeters * math.Pi / 180
	y = (lat - originLat) * model.EarthRadiusMeters * math.Pi / 180
	return x, y
}

// HaversineDistance 2地点間の大円距離を計算する（メートル）
// 対称で、同一点なら0を返す
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return model.GeoPoint{Lat: lat1, Lon: lon1}.DistanceTo(model.GeoPoint{Lat: lat2, Lon: lon2})
}

// BoundingBoxFromCenter 中心点と半径から境界ボックスを構築する
// メートル/度の関係を逆算して度数の差分を求める（経度差はcos(lat)でスケール）
// 箱の中心は入力点に一致し、半幅・半高はおよそradiusMetersになる
// （極付近では近似が悪化するが補正しない）
func BoundingBoxFromCenter(lat, lon, radiusMeters float64) model.GeoBoundingBox {
	latDelta := radiusMeters / model.EarthRadiusMeters * 180 / math.Pi
	lonDelta := radiusMeters / (model.EarthRadiusMeters * math.Cos(lat*math.Pi/180)) * 180 / math.Pi
	return model.GeoBoundingBox{
		South: lat - latDelta,
		West:  lon - lonDelta,
		North: lat + latDelta,
		East:  lon + lonDelta,
	}
}

// ValidateCoords 緯度経度の範囲を検証する。ネットワーク呼び出し前のバリデーションに使う
func ValidateCoords(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("緯度が範囲外です: %f (-90〜90で指定してください)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("経度が範囲外です: %f (-180〜180で指定してください)", lon)
	}
	return nil
}

// ProjectToLocal 座標列を原点基準のローカル座標列に射影する（z=0）
func ProjectToLocal(points []model.GeoPoint, origin model.GeoPoint) []model.Point3 {
	projected := make([]model.Point3, len(points))
	for i, p := range points {
		x, y := ToLocal(p.Lat, p.Lon, origin.Lat, origin.Lon)
		projected[i] = model.Point3{X: x, Y: y}
	}
	return projected
}
