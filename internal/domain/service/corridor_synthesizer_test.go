package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/kernel"
	"CityScape3D/internal/domain/model"
)

func TestBuildSurface(t *testing.T) {
	syn := NewCorridorSynthesizer(kernel.NewMeshKernel())
	origin := model.GeoPoint{Lat: 0, Lon: 0}

	t.Run("直線2点の中心線から幅10mの帯を構築する", func(t *testing.T) {
		centerline := []model.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 0.001}, // 東へ約111m
		}

		mesh, err := syn.BuildSurface(centerline, 10, origin, kernel.CornerSharp)
		require.NoError(t, err)
		require.Len(t, mesh.Vertices, 4)
		require.Len(t, mesh.Faces, 1)

		// 左右のオフセット曲線は中心線から±5mの位置にある
		for _, v := range mesh.Vertices {
			assert.InDelta(t, 5.0, absF(v.Y), 1e-6)
		}
	})

	t.Run("折れ線の円弧接合でも左右の点数が揃う", func(t *testing.T) {
		centerline := []model.GeoPoint{
			{Lat: 0, Lon: 0},
			{Lat: 0, Lon: 0.001},
			{Lat: 0.001, Lon: 0.001}, // 直角に北へ曲がる
		}

		mesh, err := syn.BuildSurface(centerline, 8, origin, kernel.CornerRound)
		require.NoError(t, err)
		assert.NotEmpty(t, mesh.Vertices)
		assert.NotEmpty(t, mesh.Faces)
		// ロフトの前提: 頂点は左リング＋右リングで同数
		assert.Equal(t, 0, len(mesh.Vertices)%2)
	})

	t.Run("1点の中心線はエラー", func(t *testing.T) {
		_, err := syn.BuildSurface([]model.GeoPoint{{Lat: 0, Lon: 0}}, 10, origin, kernel.CornerSharp)
		assert.Error(t, err)
	})

	t.Run("幅0はエラー", func(t *testing.T) {
		centerline := []model.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}}
		_, err := syn.BuildSurface(centerline, 0, origin, kernel.CornerSharp)
		assert.Error(t, err)
	})
}

func TestResample(t *testing.T) {
	c := model.Curve{Points: []model.Point3{
		{X: 0, Y: 0},
		{X: 10, Y: 0},
	}}

	resampled := resample(c, 5)
	require.Len(t, resampled.Points, 5)
	assert.Equal(t, c.Points[0], resampled.Points[0])
	assert.Equal(t, c.Points[1], resampled.Points[4])
	// 弧長で等間隔に補間される
	assert.InDelta(t, 2.5, resampled.Points[1].X, 1e-9)
	assert.InDelta(t, 5.0, resampled.Points[2].X, 1e-9)
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
