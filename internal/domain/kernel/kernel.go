package kernel

import "CityScape3D/internal/domain/model"

// CornerStyle オフセット時の角の処理方法
type CornerStyle int

const (
	CornerSharp CornerStyle = iota // マイター接合（道路用）
	CornerRound                    // 円弧接合（河川用）
)

// GeometryKernel ソリッドモデリングカーネルの能力契約
// 合成レイヤーはこの狭いインターフェース越しにロフト・キャップ・オフセットを呼び出す
// （カーネル内部のブーリアン/NURBS実装はスコープ外）
type GeometryKernel interface {
	// Loft 2つの曲線の間を補間してサーフェスを構築する
	Loft(a, b model.Curve) (model.Mesh, error)

	// PlanarCap 閉じた平面曲線を平面サーフェスで埋める
	PlanarCap(c model.Curve, tolerance float64) (model.Mesh, error)

	// Offset 曲線を符号付き距離だけオフセットした曲線を返す
	Offset(c model.Curve, distance, tolerance float64, corner CornerStyle) (model.Curve, error)

	// CapPlanarHoles ロフト結果の開いた両端を平面で塞ぎソリッド化する
	CapPlanarHoles(m model.Mesh, tolerance float64) (model.Mesh, error)
}
