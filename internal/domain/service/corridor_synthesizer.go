package service

import (
	"fmt"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/kernel"
	"CityScape3D/internal/domain/model"
)

// offsetTolerance オフセット演算に渡す許容誤差（メートル）
const offsetTolerance = 0.001

// CorridorSynthesizer 中心線と幅から道路・河川の帯状サーフェスを合成する
type CorridorSynthesizer struct {
	kernel kernel.GeometryKernel
}

// NewCorridorSynthesizer 新しいCorridorSynthesizerインスタンスを作成
func NewCorridorSynthesizer(k kernel.GeometryKernel) *CorridorSynthesizer {
	return &CorridorSynthesizer{kernel: k}
}

// BuildSurface 中心線を左右に幅の半分ずつオフセットし、2本のオフセット曲線間をロフトする
// 道路は鋭角接合、河川は円弧接合を使う。オフセット・ロフトの失敗はそのままエラーで返し、
// 呼び出し側が地物単位でスキップする（中心線出力には影響しない）
func (s *CorridorSynthesizer) BuildSurface(centerline []model.GeoPoint, widthMeters float64, origin model.GeoPoint, corner kernel.CornerStyle) (model.Mesh, error) {
	if len(centerline) < 2 {
		return model.Mesh{}, fmt.Errorf("中心線には2点以上が必要です (%d点)", len(centerline))
	}
	if widthMeters <= 0 {
		return model.Mesh{}, fmt.Errorf("幅が正ではありません: %f", widthMeters)
	}

	curve := model.Curve{Points: helper.ProjectToLocal(centerline, origin)}
	half := widthMeters / 2

	left, err := s.kernel.Offset(curve, half, offsetTolerance, corner)
	if err != nil {
		return model.Mesh{}, fmt.Errorf("左オフセットに失敗: %w", err)
	}
	right, err := s.kernel.Offset(curve, -half, offsetTolerance, corner)
	if err != nil {
		return model.Mesh{}, fmt.Errorf("右オフセットに失敗: %w", err)
	}

	// 円弧接合では左右の点数が揃わないことがあるため、長い方に合わせて再サンプルする
	if len(left.Points) != len(right.Points) {
		left, right = matchPointCounts(left, right)
	}

	mesh, err := s.kernel.Loft(left, right)
	if err != nil {
		return model.Mesh{}, fmt.Errorf("ロフトに失敗: %w", err)
	}
	return mesh, nil
}

// CenterlineCurve 中心線のローカル座標曲線を返す（サーフェス生成の成否とは独立）
func (s *CorridorSynthesizer) CenterlineCurve(centerline []model.GeoPoint, origin model.GeoPoint) model.Curve {
	return model.Curve{Points: helper.ProjectToLocal(centerline, origin)}
}

// matchPointCounts 2曲線の点数を長い方に合わせて線形補間で揃える
func matchPointCounts(a, b model.Curve) (model.Curve, model.Curve) {
	n := len(a.Points)
	if len(b.Points) > n {
		n = len(b.Points)
	}
	return resample(a, n), resample(b, n)
}

// resample 曲線を弧長パラメータでn点に再サンプルする
func resample(c model.Curve, n int) model.Curve {
	if len(c.Points) == n || len(c.Points) < 2 {
		return c
	}

	// 累積弧長
	lengths := make([]float64, len(c.Points))
	for i := 1; i < len(c.Points); i++ {
		lengths[i] = lengths[i-1] + c.Points[i].DistanceXY(c.Points[i-1])
	}
	total := lengths[len(lengths)-1]
	if total <= 0 {
		return c
	}

	points := make([]model.Point3, n)
	points[0] = c.Points[0]
	seg := 1
	for i := 1; i < n-1; i++ {
		target := total * float64(i) / float64(n-1)
		for seg < len(lengths)-1 && lengths[seg] < target {
			seg++
		}
		span := lengths[seg] - lengths[seg-1]
		t := 0.0
		if span > 0 {
			t = (target - lengths[seg-1]) / span
		}
		p0, p1 := c.Points[seg-1], c.Points[seg]
		points[i] = model.Point3{
			X: p0.X + (p1.X-p0.X)*t,
			Y: p0.Y + (p1.Y-p0.Y)*t,
			Z: p0.Z + (p1.Z-p0.Z)*t,
		}
	}
	points[n-1] = c.Points[len(c.Points)-1]
	return model.Curve{Points: points, Closed: c.Closed}
}
