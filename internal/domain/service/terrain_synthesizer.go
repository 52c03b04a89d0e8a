package service

import (
	"fmt"
	"math"

	"CityScape3D/internal/domain/model"
)

// TerrainSynthesizer 標高グリッドから地形メッシュを合成する
type TerrainSynthesizer struct{}

// NewTerrainSynthesizer 新しいTerrainSynthesizerインスタンスを作成
func NewTerrainSynthesizer() *TerrainSynthesizer {
	return &TerrainSynthesizer{}
}

// BuildMesh グリッドの各セルに1頂点、2x2セル近傍ごとに1四角形面を生成する
// 頂点(i,j)は (origin.x + j*cellSize, origin.y + i*cellSize, elevation[i][j]) に置かれ、
// 頂点法線は隣接面法線の平均で計算する
func (s *TerrainSynthesizer) BuildMesh(grid *model.ElevationGrid, origin model.Point3) (model.Mesh, error) {
	rows := grid.Rows()
	cols := grid.Cols()
	if rows < 2 || cols < 2 {
		return model.Mesh{}, fmt.Errorf("地形グリッドが小さすぎます: %dx%d (最低2x2)", rows, cols)
	}

	vertices := make([]model.Point3, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			vertices = append(vertices, model.Point3{
				X: origin.X + float64(j)*grid.CellSize,
				Y: origin.Y + float64(i)*grid.CellSize,
				Z: grid.Values[i][j],
			})
		}
	}

	faces := make([][]int, 0, (rows-1)*(cols-1))
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			a := i*cols + j
			b := i*cols + j + 1
			c := (i+1)*cols + j + 1
			d := (i+1)*cols + j
			faces = append(faces, []int{a, b, c, d})
		}
	}

	normals := vertexNormals(vertices, faces)
	return model.Mesh{Vertices: vertices, Faces: faces, Normals: normals}, nil
}

// vertexNormals 隣接面の法線を頂点ごとに平均して正規化する
func vertexNormals(vertices []model.Point3, faces [][]int) []model.Point3 {
	normals := make([]model.Point3, len(vertices))
	for _, face := range faces {
		n := faceNormal(vertices[face[0]], vertices[face[1]], vertices[face[2]])
		for _, vi := range face {
			normals[vi].X += n.X
			normals[vi].Y += n.Y
			normals[vi].Z += n.Z
		}
	}
	for i, n := range normals {
		length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if length > 0 {
			normals[i] = model.Point3{X: n.X / length, Y: n.Y / length, Z: n.Z / length}
		} else {
			normals[i] = model.Point3{Z: 1}
		}
	}
	return normals
}

// faceNormal 面の最初の3頂点から外積で法線を求める
func faceNormal(a, b, c model.Point3) model.Point3 {
	ux, uy, uz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	vx, vy, vz := c.X-a.X, c.Y-a.Y, c.Z-a.Z
	return model.Point3{
		X: uy*vz - uz*vy,
		Y: uz*vx - ux*vz,
		Z: ux*vy - uy*vx,
	}
}
