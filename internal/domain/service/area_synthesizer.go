package service

import (
	"fmt"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/kernel"
	"CityScape3D/internal/domain/model"
)

const (
	// lakeClosureTolerance 水域を閉じた「湖」とみなす端点間距離（メートル）
	lakeClosureTolerance = 1.0
	// DefaultRiverWidth widthタグを持たない線状水域のフォールバック幅（メートル）
	DefaultRiverWidth = 5.0
)

// AreaSynthesizer 水域・公園・土地利用の面とアメニティマーカーを合成する
type AreaSynthesizer struct {
	kernel   kernel.GeometryKernel
	corridor *CorridorSynthesizer
}

// NewAreaSynthesizer 新しいAreaSynthesizerインスタンスを作成
func NewAreaSynthesizer(k kernel.GeometryKernel, corridor *CorridorSynthesizer) *AreaSynthesizer {
	return &AreaSynthesizer{kernel: k, corridor: corridor}
}

// IsClosedWater 水域を閉じた「湖」として扱うかどうか
// 端点同士が1m以内、またはnaturalタグが文字どおり"water"の場合に湖と判定する
func IsClosedWater(f *model.Feature, origin model.GeoPoint) bool {
	if f.Tag("natural") == "water" {
		return true
	}
	pts := helper.ProjectToLocal(f.Geometry, origin)
	if len(pts) < 2 {
		return false
	}
	return pts[0].DistanceXY(pts[len(pts)-1]) <= lakeClosureTolerance
}

// BuildWaterGeometry 水域のジオメトリを構築する
// 湖は閉じた面としてキャップし、河川は道路と同じ帯状アルゴリズム（円弧接合）で構築する
func (s *AreaSynthesizer) BuildWaterGeometry(f *model.Feature, origin model.GeoPoint) (model.Mesh, error) {
	if IsClosedWater(f, origin) {
		return s.BuildAreaCap(f, origin)
	}

	width := DefaultRiverWidth
	if w := helper.ParseMetricTag(f.Tag("width")); w != nil {
		width = *w
	}
	return s.corridor.BuildSurface(f.Geometry, width, origin, kernel.CornerRound)
}

// BuildAreaCap 閉じた面地物（湖・公園・土地利用）を単一の平面サーフェスで構築する
// 末尾が先頭から離れている場合のみ先頭点を複製して閉じる
// （OSMの閉じたリングは先頭点を繰り返すため、無条件に追加すると縮退三角形が出る）
func (s *AreaSynthesizer) BuildAreaCap(f *model.Feature, origin model.GeoPoint) (model.Mesh, error) {
	projected := helper.ProjectToLocal(f.Geometry, origin)
	if len(projected) < 3 {
		return model.Mesh{}, fmt.Errorf("面地物には3点以上が必要です (%d点)", len(projected))
	}

	ring := append([]model.Point3(nil), projected...)
	if ring[len(ring)-1].DistanceXY(ring[0]) >= CleanupTolerance {
		ring = append(ring, ring[0])
	}
	mesh, err := s.kernel.PlanarCap(model.Curve{Points: ring, Closed: true}, capTolerance)
	if err != nil {
		return model.Mesh{}, fmt.Errorf("平面キャップに失敗: %w", err)
	}
	return mesh, nil
}

// BuildAmenityMarker アメニティの位置点とオプションの垂直マーカー線分を構築する
// 単一点ジオメトリはそのまま使い、多点（ポリゴン状）のジオメトリは算術重心に縮約する
// markerLength <= 0 の場合マーカーは生成しない
func (s *AreaSynthesizer) BuildAmenityMarker(f *model.Feature, origin model.GeoPoint, baseHeight, markerLength float64) (model.Point3, *model.Curve, error) {
	projected := helper.ProjectToLocal(f.Geometry, origin)
	if len(projected) == 0 {
		return model.Point3{}, nil, fmt.Errorf("アメニティにジオメトリがありません")
	}

	position := projected[0]
	if len(projected) > 1 {
		var sx, sy float64
		for _, p := range projected {
			sx += p.X
			sy += p.Y
		}
		position = model.Point3{
			X: sx / float64(len(projected)),
			Y: sy / float64(len(projected)),
		}
	}
	position.Z = baseHeight

	if markerLength <= 0 {
		return position, nil, nil
	}
	marker := &model.Curve{Points: []model.Point3{
		position,
		{X: position.X, Y: position.Y, Z: position.Z + markerLength},
	}}
	return position, marker, nil
}
