package model

import "fmt"

// Resolution 標高データの解像度
type Resolution string

const (
	Resolution90m Resolution = "90m"   // SRTM GL3
	Resolution30m Resolution = "30m"   // SRTM GL1
	ResolutionCop Resolution = "cop30" // Copernicus GLO-30
)

// demTypeCodes 解像度からOpenTopographyのdemtypeコードへのマッピング
var demTypeCodes = map[Resolution]string{
	Resolution90m: "SRTMGL3",
	Resolution30m: "SRTMGL1",
	ResolutionCop: "COP30",
}

// DEMType 解像度に対応するdemtypeコードを返す
func (r Resolution) DEMType() (string, error) {
	code, ok := demTypeCodes[r]
	if !ok {
		return "", fmt.Errorf("未対応の解像度です: %q (有効値: 90m, 30m, cop30)", string(r))
	}
	return code, nil
}

// CellSizeMeters 解像度の概算セルサイズ（メートル）
func (r Resolution) CellSizeMeters() float64 {
	if r == Resolution90m {
		return 90.0
	}
	return 30.0
}

// ElevationGrid 標高サンプルの2次元グリッド（行×列）
// Min/Maxは保持せず、毎回全走査で再計算する
type ElevationGrid struct {
	Values    [][]float64    `json:"values"`    // [row][col] の標高値（メートル）
	CellSize  float64        `json:"cell_size"` // セル1辺の長さ（メートル）
	Bounds    GeoBoundingBox `json:"bounds"`    // 元データの境界ボックス
	Synthetic bool           `json:"synthetic"` // 実デコードではなく合成グリッドかどうか
}

// Rows 行数を返す
func (g *ElevationGrid) Rows() int {
	return len(g.Values)
}

// Cols 列数を返す
func (g *ElevationGrid) Cols() int {
	if len(g.Values) == 0 {
		return 0
	}
	return len(g.Values[0])
}

// Min 最小標高を全走査で求める
func (g *ElevationGrid) Min() float64 {
	min := 0.0
	first := true
	for _, row := range g.Values {
		for _, v := range row {
			if first || v < min {
				min = v
				first = false
			}
		}
	}
	return min
}

// Max 最大標高を全走査で求める
func (g *ElevationGrid) Max() float64 {
	max := 0.0
	first := true
	for _, row := range g.Values {
		for _, v := range row {
			if first || v > max {
				max = v
				first = false
			}
		}
	}
	return max
}
