package model

import (
	"fmt"
	"math"
	"time"
)

// Point3 ローカル平面座標系の3次元点（メートル単位）
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceXY XY平面上の距離を返す（高さは無視する）
func (p Point3) DistanceXY(other Point3) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Curve 順序付き点列の曲線。Closedがtrueなら閉曲線として扱う
type Curve struct {
	Points []Point3 `json:"points"`
	Closed bool     `json:"closed"`
}

// TranslatedZ Z方向にdzだけ平行移動した曲線のコピーを返す
func (c Curve) TranslatedZ(dz float64) Curve {
	points := make([]Point3, len(c.Points))
	for i, p := range c.Points {
		points[i] = Point3{X: p.X, Y: p.Y, Z: p.Z + dz}
	}
	return Curve{Points: points, Closed: c.Closed}
}

// Mesh 頂点と面（三角形または四角形）の集合
// Facesの各要素は頂点インデックスのリスト（長さ3または4）
type Mesh struct {
	Vertices []Point3 `json:"vertices"`
	Faces    [][]int  `json:"faces"`
	Normals  []Point3 `json:"normals,omitempty"` // 頂点法線（地形メッシュで使用）
}

// GeometryBatch 並列合成1回分の出力と集計
// MeshesとNamesはインデックスを保存したまま1:1で対応する
type GeometryBatch struct {
	Kind        string   `json:"kind"`                   // buildings / streets / areas / terrain
	Meshes      []*Mesh  `json:"meshes"`                 // 生成されたメッシュ（スキップ分はnil）
	Curves      []*Curve `json:"curves,omitempty"`       // 中心線・マーカーなどの曲線出力
	Names       []string `json:"names"`                  // メッシュと対応する表示名
	Built       int      `json:"built"`                  // 成功件数
	Skipped     int      `json:"skipped"`                // スキップ件数
	SkipReasons []string `json:"skip_reasons,omitempty"` // スキップ理由の集約
	Summary     string   `json:"summary"`                // 人間可読な結果概要
}

// GeometrySnapshot 合成ジョブの記録（Firestoreアーカイブ用）
type GeometrySnapshot struct {
	ID        string    `json:"id" firestore:"id"`
	DatasetID string    `json:"dataset_id" firestore:"datasetId"`
	Kind      string    `json:"kind" firestore:"kind"`
	Built     int       `json:"built" firestore:"built"`
	Skipped   int       `json:"skipped" firestore:"skipped"`
	Summary   string    `json:"summary" firestore:"summary"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt"`
}

// BatchSummary 合成結果の概要文字列を組み立てる
func BatchSummary(kind string, built, skipped int) string {
	return fmt.Sprintf("%s: %d件生成, %d件スキップ", kind, built, skipped)
}
