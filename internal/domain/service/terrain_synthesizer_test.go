package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CityScape3D/internal/domain/model"
)

func TestTerrainBuildMesh(t *testing.T) {
	syn := NewTerrainSynthesizer()

	t.Run("3x3グリッドから9頂点4面のメッシュを構築する", func(t *testing.T) {
		grid := &model.ElevationGrid{
			Values: [][]float64{
				{0, 0, 0},
				{0, 0, 0},
				{0, 0, 0},
			},
			CellSize: 30,
		}

		mesh, err := syn.BuildMesh(grid, model.Point3{})
		require.NoError(t, err)
		assert.Len(t, mesh.Vertices, 9)
		assert.Len(t, mesh.Faces, 4)
		assert.Len(t, mesh.Normals, 9)

		// 平坦なグリッドの頂点法線は全て+Z
		for _, n := range mesh.Normals {
			assert.InDelta(t, 0.0, n.X, 1e-9)
			assert.InDelta(t, 0.0, n.Y, 1e-9)
			assert.InDelta(t, 1.0, n.Z, 1e-9)
		}
	})

	t.Run("頂点位置はセルサイズで刻まれZは標高値になる", func(t *testing.T) {
		grid := &model.ElevationGrid{
			Values: [][]float64{
				{100, 110},
				{120, 130},
			},
			CellSize: 90,
		}

		mesh, err := syn.BuildMesh(grid, model.Point3{X: 10, Y: 20})
		require.NoError(t, err)
		require.Len(t, mesh.Vertices, 4)

		assert.Equal(t, model.Point3{X: 10, Y: 20, Z: 100}, mesh.Vertices[0])
		assert.Equal(t, model.Point3{X: 100, Y: 20, Z: 110}, mesh.Vertices[1])
		assert.Equal(t, model.Point3{X: 10, Y: 110, Z: 120}, mesh.Vertices[2])
		assert.Equal(t, model.Point3{X: 100, Y: 110, Z: 130}, mesh.Vertices[3])
	})

	t.Run("2x2未満のグリッドはエラー", func(t *testing.T) {
		grid := &model.ElevationGrid{Values: [][]float64{{1, 2, 3}}, CellSize: 30}
		_, err := syn.BuildMesh(grid, model.Point3{})
		assert.Error(t, err)
	})
}
