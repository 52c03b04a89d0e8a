package service

import (
	"fmt"

	"CityScape3D/internal/domain/helper"
	"CityScape3D/internal/domain/kernel"
	"CityScape3D/internal/domain/model"
)

// capTolerance キャップ・閉合判定に使う許容誤差（メートル）
const capTolerance = 0.001

// BuildingSynthesizer 建物フットプリントから押し出しボリュームを合成する
type BuildingSynthesizer struct {
	kernel kernel.GeometryKernel
}

// NewBuildingSynthesizer 新しいBuildingSynthesizerインスタンスを作成
func NewBuildingSynthesizer(k kernel.GeometryKernel) *BuildingSynthesizer {
	return &BuildingSynthesizer{kernel: k}
}

// BuildVolume 1棟分の建物ボリュームを構築する
// フットプリントをローカル座標に投影・整形し、高さのフォールバックチェーンで
// 求めた高さだけ持ち上げた上面曲線との間をロフトして両端をキャップする
// カーネルのロフトが失敗した場合は直接三角形分割にフォールバックする
func (s *BuildingSynthesizer) BuildVolume(b *model.Building, origin model.GeoPoint) (model.Mesh, error) {
	projected := helper.ProjectToLocal(b.Footprint, origin)

	footprint, err := CleanFootprint(projected)
	if err != nil {
		return model.Mesh{}, fmt.Errorf("フットプリント整形に失敗: %w", err)
	}

	height := b.HeightMeters()
	bottom := model.Curve{Points: footprint, Closed: true}
	top := bottom.TranslatedZ(height)

	lofted, err := s.kernel.Loft(bottom, top)
	if err == nil {
		if capped, capErr := s.kernel.CapPlanarHoles(lofted, capTolerance); capErr == nil {
			return capped, nil
		}
	}

	// ロフト失敗時のフォールバック: 側面クアッドリング＋扇形キャップの直接構築
	return extrudeDirect(footprint, height), nil
}

// extrudeDirect ロフトを介さない直接押し出し
// 下リングと上リングの対応する頂点間に四角形の側面を張り、
// 上面は頂点0を支点とする扇形、下面は巻き順を反転した扇形で塞ぐ
func extrudeDirect(footprint []model.Point3, height float64) model.Mesh {
	// footprintは閉じたリング（末尾＝先頭）なので重複点を除いた数で回す
	n := len(footprint) - 1

	vertices := make([]model.Point3, 0, 2*n)
	for _, p := range footprint[:n] {
		vertices = append(vertices, p)
	}
	for _, p := range footprint[:n] {
		vertices = append(vertices, model.Point3{X: p.X, Y: p.Y, Z: p.Z + height})
	}

	faces := make([][]int, 0, 3*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		faces = append(faces, []int{i, j, n + j, n + i})
	}
	if n > 3 {
		for i := 1; i < n-1; i++ {
			faces = append(faces, []int{n, n + i, n + i + 1})
			faces = append(faces, []int{0, i + 1, i})
		}
	} else {
		faces = append(faces, []int{n, n + 1, n + 2})
		faces = append(faces, []int{0, 2, 1})
	}

	return model.Mesh{Vertices: vertices, Faces: faces}
}
