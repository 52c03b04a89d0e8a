package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"CityScape3D/internal/domain/model"
)

// roundCornerSegments 円弧接合1つあたりの分割数
const roundCornerSegments = 8

// MeshKernel GeometryKernelのメッシュベース実装
// NURBSカーネルを持たない環境向けに、ロフトを四角形リング、
// キャップを扇形三角形分割、オフセットをポリライン演算で近似する
type MeshKernel struct{}

var _ GeometryKernel = (*MeshKernel)(nil)

// NewMeshKernel 新しいMeshKernelインスタンスを作成
func NewMeshKernel() *MeshKernel {
	return &MeshKernel{}
}

// Loft 2曲線間を四角形面のリングで補間する
// 両曲線は同数の点を持つ必要がある（スキップではなくエラーで返す）
func (k *MeshKernel) Loft(a, b model.Curve) (model.Mesh, error) {
	n := len(a.Points)
	if n < 2 {
		return model.Mesh{}, errors.New("ロフトには2点以上の曲線が必要です")
	}
	if n != len(b.Points) {
		return model.Mesh{}, fmt.Errorf("曲線の点数が一致しません: %d vs %d", n, len(b.Points))
	}

	vertices := make([]model.Point3, 0, 2*n)
	vertices = append(vertices, a.Points...)
	vertices = append(vertices, b.Points...)

	segments := n - 1
	wrap := a.Closed && a.Points[0].DistanceXY(a.Points[n-1]) > 1e-9
	if wrap {
		segments = n
	}

	faces := make([][]int, 0, segments)
	for i := 0; i < segments; i++ {
		j := (i + 1) % n
		faces = append(faces, []int{i, j, n + j, n + i})
	}
	return model.Mesh{Vertices: vertices, Faces: faces}, nil
}

// PlanarCap 閉じた平面曲線を頂点0を支点とする扇形三角形で埋める
// 法線が+Z方向を向くように巻き順を揃える
func (k *MeshKernel) PlanarCap(c model.Curve, tolerance float64) (model.Mesh, error) {
	ring := ringPoints(c, tolerance)
	if len(ring) < 3 {
		return model.Mesh{}, errors.New("平面キャップには3点以上の閉曲線が必要です")
	}

	ccw := ringIsCCW(ring)
	faces := make([][]int, 0, len(ring)-2)
	for i := 1; i < len(ring)-1; i++ {
		if ccw {
			faces = append(faces, []int{0, i, i + 1})
		} else {
			faces = append(faces, []int{0, i + 1, i})
		}
	}
	return model.Mesh{Vertices: ring, Faces: faces}, nil
}

// Offset 曲線を符号付き距離だけオフセットする（正の距離で進行方向の左側）
// 角はCornerSharpでマイター接合、CornerRoundで円弧接合になる
func (k *MeshKernel) Offset(c model.Curve, distance, tolerance float64, corner CornerStyle) (model.Curve, error) {
	pts := c.Points
	if len(pts) < 2 {
		return model.Curve{}, errors.New("オフセットには2点以上の曲線が必要です")
	}
	if math.Abs(distance) < tolerance {
		return model.Curve{}, fmt.Errorf("オフセット距離が小さすぎます: %f", distance)
	}

	// 各セグメントの左法線
	type normal struct{ x, y float64 }
	normals := make([]normal, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		dx := pts[i+1].X - pts[i].X
		dy := pts[i+1].Y - pts[i].Y
		length := math.Sqrt(dx*dx + dy*dy)
		if length < tolerance {
			return model.Curve{}, fmt.Errorf("退化したセグメントがあります (index %d)", i)
		}
		normals[i] = normal{x: -dy / length, y: dx / length}
	}

	offsetPoint := func(p model.Point3, n normal) model.Point3 {
		return model.Point3{X: p.X + n.x*distance, Y: p.Y + n.y*distance, Z: p.Z}
	}

	result := make([]model.Point3, 0, len(pts))
	result = append(result, offsetPoint(pts[0], normals[0]))

	for i := 1; i < len(pts)-1; i++ {
		prev := normals[i-1]
		next := normals[i]
		a := offsetPoint(pts[i], prev)
		b := offsetPoint(pts[i], next)

		if a.DistanceXY(b) < tolerance {
			result = append(result, a)
			continue
		}

		switch corner {
		case CornerRound:
			result = append(result, a)
			result = append(result, arcPoints(pts[i], a, b, distance)...)
			result = append(result, b)
		default:
			// マイター接合: 隣接する2本のオフセット直線の交点
			m, ok := lineIntersection(
				offsetPoint(pts[i-1], prev), a,
				b, offsetPoint(pts[i+1], next),
			)
			// 鋭角すぎる角は交点が遠方に飛ぶため中点に丸める
			if !ok || m.DistanceXY(pts[i]) > 4*math.Abs(distance) {
				m = model.Point3{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: pts[i].Z}
			}
			result = append(result, m)
		}
	}

	result = append(result, offsetPoint(pts[len(pts)-1], normals[len(normals)-1]))
	return model.Curve{Points: result, Closed: c.Closed}, nil
}

// CapPlanarHoles Loftが生成したサーフェスの上下の開口を扇形キャップで塞ぐ
// 前提: 頂点列は下側リング＋上側リングの順で格納されている（Loftの契約）
func (k *MeshKernel) CapPlanarHoles(m model.Mesh, tolerance float64) (model.Mesh, error) {
	if len(m.Vertices)%2 != 0 {
		return model.Mesh{}, errors.New("頂点数が偶数ではないためキャップできません")
	}
	n := len(m.Vertices) / 2
	if n < 3 {
		return model.Mesh{}, errors.New("キャップには3点以上のリングが必要です")
	}

	bottom := m.Vertices[:n]
	distinct := n
	if bottom[0].DistanceXY(bottom[n-1]) < tolerance {
		distinct = n - 1
	}
	if distinct < 3 {
		return model.Mesh{}, errors.New("キャップには3点以上の相異なる点が必要です")
	}

	capped := model.Mesh{Vertices: m.Vertices, Faces: append([][]int(nil), m.Faces...)}
	for i := 1; i < distinct-1; i++ {
		// 下面は巻き順を反転して法線を下向きにする
		capped.Faces = append(capped.Faces, []int{0, i + 1, i})
		capped.Faces = append(capped.Faces, []int{n, n + i, n + i + 1})
	}
	return capped, nil
}

// ringPoints 閉曲線から重複する終端を除いた頂点リングを返す
func ringPoints(c model.Curve, tolerance float64) []model.Point3 {
	pts := c.Points
	if len(pts) > 1 && pts[0].DistanceXY(pts[len(pts)-1]) < tolerance {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// ringIsCCW リングが反時計回りかどうかを符号付き面積で判定する
func ringIsCCW(pts []model.Point3) bool {
	ring := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	ring = append(ring, orb.Point{pts[0].X, pts[0].Y})
	return planar.Area(ring) > 0
}

// arcPoints 頂点vertexを中心にaからbへ回る円弧の中間点を生成する
func arcPoints(vertex, a, b model.Point3, radius float64) []model.Point3 {
	startAngle := math.Atan2(a.Y-vertex.Y, a.X-vertex.X)
	endAngle := math.Atan2(b.Y-vertex.Y, b.X-vertex.X)

	sweep := endAngle - startAngle
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep < -math.Pi {
		sweep += 2 * math.Pi
	}

	r := math.Abs(radius)
	points := make([]model.Point3, 0, roundCornerSegments-1)
	for i := 1; i < roundCornerSegments; i++ {
		angle := startAngle + sweep*float64(i)/float64(roundCornerSegments)
		points = append(points, model.Point3{
			X: vertex.X + r*math.Cos(angle),
			Y: vertex.Y + r*math.Sin(angle),
			Z: vertex.Z,
		})
	}
	return points
}

// lineIntersection 2直線(p1-p2, p3-p4)の交点を求める。平行ならfalse
func lineIntersection(p1, p2, p3, p4 model.Point3) (model.Point3, bool) {
	d1x, d1y := p2.X-p1.X, p2.Y-p1.Y
	d2x, d2y := p4.X-p3.X, p4.Y-p3.Y
	det := d1x*d2y - d1y*d2x
	if math.Abs(det) < 1e-9 {
		return model.Point3{}, false
	}
	t := ((p3.X-p1.X)*d2y - (p3.Y-p1.Y)*d2x) / det
	return model.Point3{X: p1.X + t*d1x, Y: p1.Y + t*d1y, Z: p1.Z}, true
}
