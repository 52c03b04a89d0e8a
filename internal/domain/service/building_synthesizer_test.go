package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/kernel"
	"CityScape3D/internal/domain/model"
)

func testBuilding(height *float64, levels *int) *model.Building {
	// 原点近傍の約11m四方のフットプリント
	return &model.Building{
		ID: 1,
		Footprint: []model.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 0.0001},
			{Lat: 0.0001, Lon: 0.0001},
			{Lat: 0.0001, Lon: 0},
		},
		Height: height,
		Levels: levels,
	}
}

func TestBuildVolume(t *testing.T) {
	syn := NewBuildingSynthesizer(kernel.NewMeshKernel())
	origin := model.GeoPoint{Lat: 0, Lon: 0}

	t.Run("明示的な高さ12mのボリュームを構築する", func(t *testing.T) {
		h := 12.0
		mesh, err := syn.BuildVolume(testBuilding(&h, nil), origin)
		require.NoError(t, err)
		require.NotEmpty(t, mesh.Vertices)
		require.NotEmpty(t, mesh.Faces)

		// 全頂点のZは底面0または上面12のどちらか
		for _, v := range mesh.Vertices {
			assert.Contains(t, []float64{0, 12}, v.Z)
		}

		// 下リング＋上リングの2層構成
		n := len(mesh.Vertices) / 2
		for i, v := range mesh.Vertices {
			if i < n {
				assert.Equal(t, 0.0, v.Z)
			} else {
				assert.Equal(t, 12.0, v.Z)
			}
		}
	})

	t.Run("高さのフォールバックチェーンが適用される", func(t *testing.T) {
		// 階数3 → 10.5m
		levels := 3
		mesh, err := syn.BuildVolume(testBuilding(nil, &levels), origin)
		require.NoError(t, err)

		maxZ := 0.0
		for _, v := range mesh.Vertices {
			if v.Z > maxZ {
				maxZ = v.Z
			}
		}
		assert.InDelta(t, 10.5, maxZ, 1e-9)
	})

	t.Run("退化したフットプリントはエラー", func(t *testing.T) {
		b := &model.Building{
			ID: 2,
			Footprint: []model.GeoPoint{
				{Lat: 0, Lon: 0},
				{Lat: 0, Lon: 0.0001},
			},
		}
		_, err := syn.BuildVolume(b, origin)
		assert.Error(t, err)
	})
}

func TestExtrudeDirect(t *testing.T) {
	// 閉じた三角形リング（末尾＝先頭）
	footprint := []model.Point3{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
		{X: 5, Y: 10},
		{X: 0, Y: 0},
	}

	mesh := extrudeDirect(footprint, 6)

	// 頂点は下リング3点＋上リング3点
	assert.Len(t, mesh.Vertices, 6)
	// 側面3クアッド＋上下の三角形キャップ
	assert.GreaterOrEqual(t, len(mesh.Faces), 5)
	for _, v := range mesh.Vertices[3:] {
		assert.Equal(t, 6.0, v.Z)
	}
}
